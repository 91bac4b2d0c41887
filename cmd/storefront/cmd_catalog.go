package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"Storefront/internal/catalog"
)

func newProductsCmd(get func() *app) *cobra.Command {
	var category, search string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			list := a.catalog.ByCategory(category)
			if search != "" {
				list = filterCategory(a.catalog.Search(search), category)
			}
			printProducts(cmd.OutOrStdout(), list)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only products in this category")
	cmd.Flags().StringVarP(&search, "search", "s", "", "match name or description")
	return cmd
}

func filterCategory(in []catalog.Product, category string) []catalog.Product {
	if category == "" {
		return in
	}
	out := in[:0]
	for _, p := range in {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func newCategoriesCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, c := range get().catalog.Categories() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func printProducts(w io.Writer, list []catalog.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tRATING")
	for _, p := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%.1f\n", p.ID, p.Name, p.Category, p.Price.StringFixed(2), p.Stock, p.Rating)
	}
	_ = tw.Flush()
}
