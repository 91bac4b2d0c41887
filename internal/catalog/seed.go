package catalog

import "github.com/shopspring/decimal"

func Seed() []Product {
	return []Product{
		{
			ID:          1,
			Name:        "Premium Headphones",
			Description: "High-quality wireless headphones with noise cancellation",
			Price:       decimal.RequireFromString("299.99"),
			ImageURL:    "assets/images/headphones.svg",
			Category:    "Electronics",
			Stock:       50,
			Rating:      4.5,
		},
		{
			ID:          2,
			Name:        "Smart Watch",
			Description: "Fitness tracking smartwatch with heart rate monitor",
			Price:       decimal.RequireFromString("199.99"),
			ImageURL:    "assets/images/smartwatch.svg",
			Category:    "Electronics",
			Stock:       30,
			Rating:      4.3,
		},
		{
			ID:          3,
			Name:        "Laptop Bag",
			Description: "Durable laptop bag with multiple compartments",
			Price:       decimal.RequireFromString("49.99"),
			ImageURL:    "assets/images/bag.svg",
			Category:    "Accessories",
			Stock:       100,
			Rating:      4.7,
		},
		{
			ID:          4,
			Name:        "Wireless Mouse",
			Description: "Ergonomic wireless mouse with precision tracking",
			Price:       decimal.RequireFromString("29.99"),
			ImageURL:    "assets/images/mouse.svg",
			Category:    "Accessories",
			Stock:       75,
			Rating:      4.4,
		},
	}
}
