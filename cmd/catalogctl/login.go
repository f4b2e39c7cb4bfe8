package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange admin credentials for a bearer token",
		Example: `  catalogctl login --email admin@example.com --password secret
  export CATALOG_TOKEN=$(catalogctl login --email ... --password ... --quiet)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(cmd)

			token, user, err := client.Auth().Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			quiet, _ := cmd.Flags().GetBool("quiet")
			if quiet {
				fmt.Println(token)
				return nil
			}

			color.Green("Signed in as %s <%s>", user.Name, user.Email)
			fmt.Println(token)

			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().Bool("quiet", false, "print only the token")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
