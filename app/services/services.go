// Package services holds the shopfront business operations. Each service
// takes its collaborators in its constructor; nothing reaches for globals.
package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/shopfront/app/models"
)

// ProductRepo is the products table as the services see it.
type ProductRepo interface {
	All(ctx context.Context) ([]models.Product, error)
	Find(ctx context.Context, id string) (models.Product, bool, error)
	Save(ctx context.Context, p models.Product) error
}

// StockRepo is the stock table as the services see it.
type StockRepo interface {
	All(ctx context.Context) ([]models.Stock, error)
	Find(ctx context.Context, productID string) (models.Stock, bool, error)
	Save(ctx context.Context, s models.Stock) error
}

// IDFunc mints product ids. Tests replace it for stable output.
type IDFunc func() string

func newUUID() string { return uuid.NewString() }
