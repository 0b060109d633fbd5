package repositories

import (
	"context"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/recordstore"
)

// StockRepository reads and writes the stock table.
type StockRepository struct {
	store recordstore.Store
	table string
}

func NewStockRepository(store recordstore.Store, table string) *StockRepository {
	return &StockRepository{store: store, table: table}
}

func (r *StockRepository) All(ctx context.Context) ([]models.Stock, error) {
	var stock []models.Stock
	err := r.store.Scan(ctx, r.table, &stock)
	return stock, err
}

func (r *StockRepository) Find(ctx context.Context, productID string) (s models.Stock, found bool, err error) {
	found, err = r.store.Get(ctx, r.table, productID, &s)
	return s, found, err
}

// Save overwrites the stock of s.ProductID. Counts are never incremented.
func (r *StockRepository) Save(ctx context.Context, s models.Stock) error {
	return r.store.Put(ctx, r.table, s)
}
