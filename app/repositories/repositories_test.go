package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/recordstore"
)

func TestProductAndStockRepositories(t *testing.T) {
	store := recordstore.NewMemoryStore(recordstore.Schema{"products": "id", "stock": "product_id"})
	products := repositories.NewProductRepository(store, "products")
	stock := repositories.NewStockRepository(store, "stock")
	ctx := context.Background()

	require.NoError(t, products.Save(ctx, models.Product{ID: "p1", Name: "Lamp", Price: 10}))
	require.NoError(t, stock.Save(ctx, models.Stock{ProductID: "p1", Count: 5}))
	require.NoError(t, stock.Save(ctx, models.Stock{ProductID: "p1", Count: 2}))

	p, found, err := products.Find(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Lamp", p.Name)

	_, found, err = products.Find(ctx, "p2")
	require.NoError(t, err)
	assert.False(t, found)

	all, err := stock.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Stock{{ProductID: "p1", Count: 2}}, all)
}
