package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/validate"
)

// ErrMissingProductAttributes rejects a create request with a missing or zero
// field.
var ErrMissingProductAttributes = apperr.Invalid("Missing required product attributes")

// CreateProductInput is the body of POST /products. Every field is required
// and zero values count as missing.
type CreateProductInput struct {
	Name        string  `json:"name"        validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price"       validate:"required"`
	Count       int     `json:"count"       validate:"required"`
}

// ProductService lists, fetches and creates products.
type ProductService struct {
	products ProductRepo
	stock    StockRepo
	newID    IDFunc
}

func NewProductService(products ProductRepo, stock StockRepo) *ProductService {
	return &ProductService{products: products, stock: stock, newID: newUUID}
}

// WithIDFunc replaces the id generator.
func (s *ProductService) WithIDFunc(f IDFunc) *ProductService {
	s.newID = f
	return s
}

// List joins every product with its stock count (0 when it has none).
// An empty catalogue is a not-found error, never an empty list.
func (s *ProductService) List(ctx context.Context) ([]models.ProductView, error) {
	products, err := s.products.All(ctx)
	if err != nil {
		return nil, apperr.Upstream("scan products", err)
	}
	if len(products) == 0 {
		return nil, apperr.NotFound("No products found")
	}

	stock, err := s.stock.All(ctx)
	if err != nil {
		return nil, apperr.Upstream("scan stock", err)
	}

	counts := make(map[string]int, len(stock))
	for _, st := range stock {
		counts[st.ProductID] = st.Count
	}

	views := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, models.NewProductView(p, counts[p.ID]))
	}

	logger.WithCtx(ctx).Debug("products listed", "count", len(views))
	return views, nil
}

// Get returns one product with its stock count.
func (s *ProductService) Get(ctx context.Context, id string) (models.ProductView, error) {
	if id == "" {
		return models.ProductView{}, apperr.NotFound("Product ID is missing")
	}

	p, found, err := s.products.Find(ctx, id)
	if err != nil {
		return models.ProductView{}, apperr.Upstream("get product", err)
	}
	if !found {
		return models.ProductView{}, apperr.NotFound(fmt.Sprintf("Product with ID %s not found", id))
	}

	st, _, err := s.stock.Find(ctx, id)
	if err != nil {
		return models.ProductView{}, apperr.Upstream("get stock", err)
	}

	return models.NewProductView(p, st.Count), nil
}

// Create writes a new product and then its stock. The two writes are not
// atomic: if the stock write fails the product stays without stock.
func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (models.ProductView, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		logger.WithCtx(ctx).Warn("create product rejected", "missing", errs.Fields())
		return models.ProductView{}, ErrMissingProductAttributes
	}

	p := models.Product{
		ID:          s.newID(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
	}
	if err := s.products.Save(ctx, p); err != nil {
		return models.ProductView{}, apperr.Upstream("put product", err)
	}

	if err := s.stock.Save(ctx, models.Stock{ProductID: p.ID, Count: in.Count}); err != nil {
		logger.WithCtx(ctx).Error("stock write failed after product write",
			"product_id", p.ID, "error", err)
		return models.ProductView{}, apperr.Upstream("put stock", err)
	}

	logger.WithCtx(ctx).Info("product created", "product_id", p.ID)
	return models.NewProductView(p, in.Count), nil
}
