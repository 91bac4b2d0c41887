package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"Storefront/internal/cart"
)

func newCartCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the shopping cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printCart(cmd.OutOrStdout(), get().cart)
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <product-id> [quantity]",
			Short: "Add a product",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := get()
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				qty := 1
				if len(args) == 2 {
					if qty, err = strconv.Atoi(args[1]); err != nil {
						return errors.Wrap(err, "quantity")
					}
				}
				p, ok := a.catalog.Get(id)
				if !ok {
					return errors.Errorf("product %d not found", id)
				}
				if err := a.cart.AddToCart(p, qty); err != nil {
					return err
				}
				printCart(cmd.OutOrStdout(), a.cart)
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <product-id>",
			Short: "Remove a product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := get().cart.RemoveFromCart(id); err != nil {
					return err
				}
				printCart(cmd.OutOrStdout(), get().cart)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <product-id> <quantity>",
			Short: "Change the quantity of a product; 0 removes it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				qty, err := strconv.Atoi(args[1])
				if err != nil {
					return errors.Wrap(err, "quantity")
				}
				if err := get().cart.UpdateQuantity(id, qty); err != nil {
					return err
				}
				printCart(cmd.OutOrStdout(), get().cart)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := get().cart.ClearCart(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cart cleared")
				return nil
			},
		},
	)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "id %q", s)
	}
	return id, nil
}

func printCart(w io.Writer, c *cart.Store) {
	items := c.Items()
	if len(items) == 0 {
		fmt.Fprintln(w, "cart is empty")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range items {
		sub := it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
			it.Product.ID, it.Product.Name, it.Quantity, it.Product.Price.StringFixed(2), sub.StringFixed(2))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "items: %d  total: %s\n", c.ItemCount(), c.Total().StringFixed(2))
}
