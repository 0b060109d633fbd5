package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
)

func TestProductService_CreateEchoesInputWithStock(t *testing.T) {
	f := newFixture()
	svc := services.NewProductService(f.products, f.stock).WithIDFunc(func() string { return "p-1" })

	view, err := svc.Create(context.Background(), services.CreateProductInput{
		Name: "Lamp", Description: "Desk lamp", Price: 10.5, Count: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProductView{ID: "p-1", Name: "Lamp", Description: "Desk lamp", Price: 10.5, Stock: 5}, view)
	assert.Equal(t, 1, f.store.Len("products"))
	assert.Equal(t, 1, f.store.Len("stock"))
}

func TestProductService_CreateRejectsMissingFields(t *testing.T) {
	cases := map[string]services.CreateProductInput{
		"no name":        {Description: "d", Price: 1, Count: 1},
		"no description": {Name: "n", Price: 1, Count: 1},
		"zero price":     {Name: "n", Description: "d", Count: 1},
		"zero count":     {Name: "n", Description: "d", Price: 1},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			_, err := services.NewProductService(f.products, f.stock).Create(context.Background(), in)

			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindInvalid))
			assert.Equal(t, "Missing required product attributes", apperr.Message(err))
			assert.Zero(t, f.store.Len("products"))
		})
	}
}

func TestProductService_CreateAcceptsWhitespaceName(t *testing.T) {
	f := newFixture()
	svc := services.NewProductService(f.products, f.stock).WithIDFunc(func() string { return "p-2" })

	view, err := svc.Create(context.Background(), services.CreateProductInput{
		Name: " ", Description: "d", Price: 1, Count: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, " ", view.Name)
	assert.Equal(t, 1, f.store.Len("products"))
}

func TestProductService_CreateStockFailureLeavesProduct(t *testing.T) {
	products := new(MockProductRepo)
	stock := new(MockStockRepo)
	products.On("Save", mock.Anything, mock.AnythingOfType("models.Product")).Return(nil)
	stock.On("Save", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	_, err := services.NewProductService(products, stock).Create(context.Background(),
		services.CreateProductInput{Name: "n", Description: "d", Price: 1, Count: 1})

	require.Error(t, err)
	assert.Equal(t, 500, apperr.Status(err))
	products.AssertNumberOfCalls(t, "Save", 1)
}

func TestProductService_ListEmptyIsNotFound(t *testing.T) {
	f := newFixture()
	views, err := services.NewProductService(f.products, f.stock).List(context.Background())

	assert.Nil(t, views)
	require.Error(t, err)
	assert.Equal(t, 404, apperr.Status(err))
	assert.Equal(t, "No products found", apperr.Message(err))
}

func TestProductService_ListJoinsStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.products.Save(ctx, models.Product{ID: "a", Name: "A", Price: 1}))
	require.NoError(t, f.products.Save(ctx, models.Product{ID: "b", Name: "B", Price: 2}))
	require.NoError(t, f.stock.Save(ctx, models.Stock{ProductID: "a", Count: 7}))

	views, err := services.NewProductService(f.products, f.stock).List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 7, views[0].Stock)
	assert.Equal(t, 0, views[1].Stock, "missing stock reads as zero")
}

func TestProductService_ListStoreFailure(t *testing.T) {
	products := new(MockProductRepo)
	products.On("All", mock.Anything).Return(nil, errors.New("network"))

	_, err := services.NewProductService(products, new(MockStockRepo)).List(context.Background())
	require.Error(t, err)
	assert.Equal(t, 500, apperr.Status(err))
	assert.Equal(t, "Internal Server Error", apperr.Message(err))
}

func TestProductService_Get(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.products.Save(ctx, models.Product{ID: "a", Name: "A", Description: "d", Price: 3}))
	svc := services.NewProductService(f.products, f.stock)

	view, err := svc.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.ProductView{ID: "a", Name: "A", Description: "d", Price: 3, Stock: 0}, view)

	_, err = svc.Get(ctx, "zzz")
	assert.Equal(t, 404, apperr.Status(err))
	assert.Equal(t, "Product with ID zzz not found", apperr.Message(err))

	_, err = svc.Get(ctx, "")
	assert.Equal(t, "Product ID is missing", apperr.Message(err))
}
