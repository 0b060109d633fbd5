package repositories

import (
	"context"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/recordstore"
)

// ProductRepository reads and writes the products table.
type ProductRepository struct {
	store recordstore.Store
	table string
}

func NewProductRepository(store recordstore.Store, table string) *ProductRepository {
	return &ProductRepository{store: store, table: table}
}

// All scans the whole table.
func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.store.Scan(ctx, r.table, &products)
	return products, err
}

// Find looks a product up by id. found is false when it does not exist.
func (r *ProductRepository) Find(ctx context.Context, id string) (p models.Product, found bool, err error) {
	found, err = r.store.Get(ctx, r.table, id, &p)
	return p, found, err
}

// Save writes p, replacing any product with the same id.
func (r *ProductRepository) Save(ctx context.Context, p models.Product) error {
	return r.store.Put(ctx, r.table, p)
}
