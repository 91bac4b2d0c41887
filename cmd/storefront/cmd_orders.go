package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"Storefront/internal/checkout"
	"Storefront/internal/order"
)

func newCheckoutCmd(get func() *app) *cobra.Command {
	var override order.ShippingAddress

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			ship := mergeShipping(a.checkout.DefaultShipping(), override)

			o, err := a.checkout.Submit(cmd.Context(), ship)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %d placed: %s (%s)\n", o.ID, o.Total.StringFixed(2), o.Status)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&override.FullName, "name", "", "recipient name")
	f.StringVar(&override.Address, "address", "", "street address")
	f.StringVar(&override.City, "city", "", "city")
	f.StringVar(&override.State, "state", "", "state or province")
	f.StringVar(&override.ZipCode, "zip", "", "postal code")
	f.StringVar(&override.Country, "country", "", "country")
	f.StringVar(&override.Phone, "phone", "", "contact phone")
	return cmd
}

// mergeShipping fills blank fields of override from base.
func mergeShipping(base, override order.ShippingAddress) order.ShippingAddress {
	pick := func(o, b string) string {
		if o != "" {
			return o
		}
		return b
	}
	return order.ShippingAddress{
		FullName: pick(override.FullName, base.FullName),
		Address:  pick(override.Address, base.Address),
		City:     pick(override.City, base.City),
		State:    pick(override.State, base.State),
		ZipCode:  pick(override.ZipCode, base.ZipCode),
		Country:  pick(override.Country, base.Country),
		Phone:    pick(override.Phone, base.Phone),
	}
}

func newOrdersCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List orders of the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			u, ok := a.auth.CurrentUser()
			if !ok {
				return checkout.ErrNotAuthenticated
			}
			printOrders(cmd.OutOrStdout(), a.orders.OrdersByUserID(u.ID))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Change the status of an order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			o, found, err := get().orders.UpdateOrderStatus(id, order.Status(args[1]))
			if err != nil {
				return err
			}
			if !found {
				return errors.Errorf("order %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %d is now %s\n", o.ID, o.Status)
			return nil
		},
	})
	return cmd
}

func printOrders(w io.Writer, orders []order.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "no orders")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tITEMS\tTOTAL\tSTATUS")
	for _, o := range orders {
		n := 0
		for _, it := range o.Items {
			n += it.Quantity
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
			o.ID, o.CreatedAt.Format("2006-01-02 15:04"), n, o.Total.StringFixed(2), o.Status)
	}
	_ = tw.Flush()
}
