package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/queue"
	"github.com/shashiranjanraj/shopfront/pkg/recordstore"
)

type MockProductRepo struct{ mock.Mock }

func (m *MockProductRepo) All(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *MockProductRepo) Find(ctx context.Context, id string) (models.Product, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Product), args.Bool(1), args.Error(2)
}

func (m *MockProductRepo) Save(ctx context.Context, p models.Product) error {
	return m.Called(ctx, p).Error(0)
}

type MockStockRepo struct{ mock.Mock }

func (m *MockStockRepo) All(ctx context.Context) ([]models.Stock, error) {
	args := m.Called(ctx)
	stock, _ := args.Get(0).([]models.Stock)
	return stock, args.Error(1)
}

func (m *MockStockRepo) Find(ctx context.Context, id string) (models.Stock, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Stock), args.Bool(1), args.Error(2)
}

func (m *MockStockRepo) Save(ctx context.Context, s models.Stock) error {
	return m.Called(ctx, s).Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, topic, subject, message string) error {
	return m.Called(ctx, topic, subject, message).Error(0)
}

// fixture wires real repositories over an in-memory record store.
type fixture struct {
	store    *recordstore.MemoryStore
	products *repositories.ProductRepository
	stock    *repositories.StockRepository
}

func newFixture() fixture {
	store := recordstore.NewMemoryStore(recordstore.Schema{"products": "id", "stock": "product_id"})
	return fixture{
		store:    store,
		products: repositories.NewProductRepository(store, "products"),
		stock:    repositories.NewStockRepository(store, "stock"),
	}
}

func newQueue() *queue.MemoryDriver { return queue.NewMemoryDriver(10 * time.Millisecond) }
