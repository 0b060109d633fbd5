package seeders

import (
	"context"

	"github.com/shashiranjanraj/shopfront/app/services"
)

func init() {
	Register("products", SeedProducts)
}

var demoProducts = []services.CreateProductInput{
	{Name: "Espresso Cup", Description: "Porcelain, 80 ml", Price: 7.5, Count: 40},
	{Name: "Pour-over Kettle", Description: "Gooseneck, stainless steel, 1 l", Price: 39.9, Count: 12},
	{Name: "Hand Grinder", Description: "Ceramic burrs, adjustable", Price: 54, Count: 8},
	{Name: "Paper Filters", Description: "Size 02, pack of 100", Price: 4.2, Count: 150},
}

// SeedProducts creates a small demo catalogue with stock.
func SeedProducts(ctx context.Context, svc Services) error {
	for _, in := range demoProducts {
		if _, err := svc.Products.Create(ctx, in); err != nil {
			return err
		}
	}
	return nil
}
