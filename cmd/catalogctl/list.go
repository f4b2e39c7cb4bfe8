package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"catalog_admin/internal/services/listing"
	"catalog_admin/internal/upstream"
)

func newListCmd() *cobra.Command {
	var (
		page   int
		limit  int
		sortBy string
		order  string
		search string
	)

	cmd := &cobra.Command{
		Use:   "list <products|categories|tags>",
		Short: "List a catalog resource page by page",
		Example: `  catalogctl list products --search lotus
  catalogctl list tags --sort name --order asc --page 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(cmd)

			q := upstream.ListQuery{
				Page:   page,
				Limit:  limit,
				SortBy: sortBy,
				Order:  order,
				Search: search,
			}

			count, err := printList(cmd.Context(), client, args[0], q)
			if err != nil {
				return err
			}

			color.Cyan(listing.RangeLabel(page, limit, count, false))

			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "zero-based page index")
	cmd.Flags().IntVar(&limit, "limit", 10, "rows per page")
	cmd.Flags().StringVar(&sortBy, "sort", "createdAt", "sort key")
	cmd.Flags().StringVar(&order, "order", "desc", "sort direction (asc|desc)")
	cmd.Flags().StringVar(&search, "search", "", "search term")

	return cmd
}

func printList(ctx context.Context, client *upstream.Client, resource string, q upstream.ListQuery) (int, error) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	switch resource {
	case "products":
		page, err := client.Products().List(ctx, q)
		if err != nil {
			return 0, err
		}
		fmt.Fprintln(w, "ID\tSKU\tTITLE\tPRICE\tACTIVE")
		for _, p := range page.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%t\n", p.ID, p.SkuID, p.Title, p.Price, p.IsActive)
		}
		return page.Count, nil
	case "categories":
		page, err := client.Categories().List(ctx, q)
		if err != nil {
			return 0, err
		}
		fmt.Fprintln(w, "ID\tNAME\tSLUG\tACTIVE")
		for _, c := range page.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", c.ID, c.Name, c.Slug, c.IsActive)
		}
		return page.Count, nil
	case "tags":
		page, err := client.Tags().List(ctx, q)
		if err != nil {
			return 0, err
		}
		fmt.Fprintln(w, "ID\tNAME\tVALUE\tACTIVE")
		for _, t := range page.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", t.ID, t.Name, t.Value, t.IsActive)
		}
		return page.Count, nil
	}

	return 0, fmt.Errorf("unknown resource %q", resource)
}
