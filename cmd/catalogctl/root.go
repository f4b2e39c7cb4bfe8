// catalogctl talks to the catalog API directly, without the admin panel in
// between. Handy for scripted maintenance and for poking the upstream while
// debugging panel behavior.
package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"catalog_admin/internal/upstream"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Command-line access to the catalog API",
		Long: `catalogctl lists, inspects and deletes catalog resources.

Configuration comes from flags or the environment (a .env file is loaded
when present): CATALOG_API_URL and CATALOG_TOKEN.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().String("api-url", "", "catalog API base URL (defaults to CATALOG_API_URL)")
	cmd.PersistentFlags().String("token", "", "bearer token (defaults to CATALOG_TOKEN)")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}

func newClient(cmd *cobra.Command) *upstream.Client {
	baseURL, _ := cmd.Flags().GetString("api-url")
	if baseURL == "" {
		baseURL = os.Getenv("CATALOG_API_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8000/api/v1"
	}

	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token = os.Getenv("CATALOG_TOKEN")
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	return upstream.New(log, baseURL, 15*time.Second, upstream.StaticToken(token))
}
