package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/validate"
)

var ErrInvalidStockInput = apperr.Invalid("Invalid input. Ensure product_id and count are provided.")

// AddStockInput is the body of POST /stock.
//
// Count is required, so a count of 0 is rejected as missing rather than
// setting the stock to zero.
type AddStockInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Count     int    `json:"count"      validate:"required"`
}

// StockService sets the stock count of an existing product.
type StockService struct {
	products ProductRepo
	stock    StockRepo
}

func NewStockService(products ProductRepo, stock StockRepo) *StockService {
	return &StockService{products: products, stock: stock}
}

// Add overwrites the stock of in.ProductID with in.Count. The last write wins.
func (s *StockService) Add(ctx context.Context, in AddStockInput) (models.Stock, error) {
	if validate.HasErrors(validate.Struct(in)) {
		return models.Stock{}, ErrInvalidStockInput
	}

	_, found, err := s.products.Find(ctx, in.ProductID)
	if err != nil {
		return models.Stock{}, apperr.Upstream("get product", err)
	}
	if !found {
		return models.Stock{}, apperr.NotFound(fmt.Sprintf("Product with ID %s does not exist.", in.ProductID))
	}

	st := models.Stock{ProductID: in.ProductID, Count: in.Count}
	if err := s.stock.Save(ctx, st); err != nil {
		return models.Stock{}, apperr.Upstream("put stock", err)
	}

	logger.WithCtx(ctx).Info("stock set", "product_id", st.ProductID, "count", st.Count)
	return st, nil
}
