package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <products|categories|tags> <id>",
		Short: "Fetch one record as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(cmd)

			var (
				record any
				err    error
			)
			switch args[0] {
			case "products":
				record, err = client.Products().Get(cmd.Context(), args[1])
			case "categories":
				record, err = client.Categories().Get(cmd.Context(), args[1])
			case "tags":
				record, err = client.Tags().Get(cmd.Context(), args[1])
			default:
				return fmt.Errorf("unknown resource %q", args[0])
			}
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))

			return nil
		},
	}

	return cmd
}
