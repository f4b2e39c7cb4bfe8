package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <products|categories|tags> <id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete without --yes")
			}

			client := newClient(cmd)

			var (
				msg string
				err error
			)
			switch args[0] {
			case "products":
				msg, err = client.Products().Delete(cmd.Context(), args[1])
			case "categories":
				msg, err = client.Categories().Delete(cmd.Context(), args[1])
			case "tags":
				msg, err = client.Tags().Delete(cmd.Context(), args[1])
			default:
				return fmt.Errorf("unknown resource %q", args[0])
			}
			if err != nil {
				return err
			}

			if msg == "" {
				msg = "Deleted"
			}
			color.Green(msg)

			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the delete")

	return cmd
}
