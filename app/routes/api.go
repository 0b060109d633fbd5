package routes

import (
	"net/http"

	"github.com/shashiranjanraj/shopfront/app/controllers"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/middleware"
	"github.com/shashiranjanraj/shopfront/pkg/router"
)

// API is everything the HTTP routes hand requests to.
type API struct {
	Products *controllers.ProductController
	Stock    *controllers.StockController
	Import   *controllers.ImportController
	Auth     *controllers.AuthController
	GraphQL  http.HandlerFunc

	// Storage accepts uploads for the local disk. Nil when imports go to S3.
	Storage *controllers.StorageController

	// Gate guards /import when ImportRequireAuth is set.
	Gate              *auth.Gate
	ImportRequireAuth bool

	// Limiter throttles the routes that check credentials. Nil disables it.
	Limiter *middleware.Limiter
}

func RegisterAPI(r *router.Router, api API) {
	r.Get("/health", "health", controllers.Health)

	r.Get("/products", "products.index", api.Products.Index)
	r.Get("/products/{id}", "products.show", api.Products.Show)
	r.Post("/products", "products.store", api.Products.Store)

	r.Post("/stock", "stock.store", api.Stock.Store)

	var throttle []router.Middleware
	if api.Limiter != nil {
		throttle = append(throttle, middleware.RateLimit(api.Limiter))
	}

	r.Get("/authorizer", "auth.authorize", api.Auth.Authorize, throttle...)

	importMW := append([]router.Middleware(nil), throttle...)
	if api.ImportRequireAuth {
		importMW = append(importMW, middleware.BasicAuth(api.Gate))
	}
	imports := r.Group("/import", importMW...)
	imports.Get("", "import.signed_url", api.Import.SignedURL)
	imports.Post("/events", "import.events", api.Import.Events)

	if api.Storage != nil {
		r.Put("/storage/*", "storage.upload", api.Storage.Upload)
	}

	if api.GraphQL != nil {
		r.Get("/graphql", "graphql.query", api.GraphQL)
		r.Post("/graphql", "graphql", api.GraphQL)
	}
}
