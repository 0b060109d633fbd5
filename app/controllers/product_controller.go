package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/bind"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/response"
)

type ProductController struct {
	service *services.ProductService
}

func NewProductController(service *services.ProductService) *ProductController {
	return &ProductController{service: service}
}

// Index handles GET /products.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	views, err := c.service.List(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, views)
}

// Show handles GET /products/{id}.
func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	view, err := c.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, view)
}

type createdProduct struct {
	Message string             `json:"message"`
	Product models.ProductView `json:"product"`
}

// Store handles POST /products.
func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.CreateProductInput
	errs, err := bind.JSON(w, r, &in)
	if err != nil || errs != nil {
		logger.WithCtx(r.Context()).Warn("create product: bad body", "error", err, "fields", errs.Fields())
		response.FromError(w, services.ErrMissingProductAttributes)
		return
	}

	view, err := c.service.Create(r.Context(), in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, createdProduct{Message: "Product created successfully!", Product: view})
}
