// Package checkout turns the signed-in user's cart into an order.
package checkout

import (
	"context"

	"github.com/go-faster/errors"

	"Storefront/internal/auth"
	"Storefront/internal/cart"
	"Storefront/internal/order"
)

var (
	ErrNotAuthenticated = errors.New("please login to complete your order")
	ErrEmptyCart        = errors.New("cart is empty")
)

type Service struct {
	Cart   *cart.Store
	Auth   *auth.Store
	Orders *order.Store
}

// DefaultShipping prefills shipping details from the current user's profile.
// It returns a zero value when nobody is signed in or the profile has no
// address.
func (s *Service) DefaultShipping() order.ShippingAddress {
	u, ok := s.Auth.CurrentUser()
	if !ok || u.Address == nil {
		return order.ShippingAddress{}
	}
	return order.ShippingAddress{
		FullName: u.Name,
		Address:  u.Address.Street,
		City:     u.Address.City,
		State:    u.Address.State,
		ZipCode:  u.Address.ZipCode,
		Country:  u.Address.Country,
		Phone:    u.Phone,
	}
}

// Submit places an order for everything in the cart at current prices and
// empties the cart once the order is stored.
func (s *Service) Submit(ctx context.Context, ship order.ShippingAddress) (order.Order, error) {
	u, ok := s.Auth.CurrentUser()
	if !ok {
		return order.Order{}, ErrNotAuthenticated
	}

	items := s.Cart.Items()
	if len(items) == 0 {
		return order.Order{}, ErrEmptyCart
	}

	lines := make([]order.Item, 0, len(items))
	for _, it := range items {
		lines = append(lines, order.Item{
			Product:  it.Product,
			Quantity: it.Quantity,
			Price:    it.Product.Price,
		})
	}

	o, err := s.Orders.CreateOrder(ctx, order.NewOrder{
		UserID:          u.ID,
		Items:           lines,
		Total:           s.Cart.Total(),
		Status:          order.StatusPending,
		ShippingAddress: &ship,
	}).Await(ctx)
	if err != nil {
		return order.Order{}, errors.Wrap(err, "create order")
	}

	if err := s.Cart.ClearCart(); err != nil {
		return o, errors.Wrap(err, "clear cart")
	}
	return o, nil
}
