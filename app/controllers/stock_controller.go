package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/bind"
	"github.com/shashiranjanraj/shopfront/pkg/response"
)

type StockController struct {
	service *services.StockService
}

func NewStockController(service *services.StockService) *StockController {
	return &StockController{service: service}
}

type addedStock struct {
	Message string       `json:"message"`
	Stock   models.Stock `json:"stock"`
}

// Store handles POST /stock. A count of 0 is rejected like a missing one.
func (c *StockController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.AddStockInput
	if errs, err := bind.JSON(w, r, &in); err != nil || errs != nil {
		response.FromError(w, services.ErrInvalidStockInput)
		return
	}

	st, err := c.service.Add(r.Context(), in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, addedStock{
		Message: "Stock successfully added for product_id: " + st.ProductID,
		Stock:   st,
	})
}
