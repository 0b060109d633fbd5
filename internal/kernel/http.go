package kernel

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/shopfront/app/controllers"
	"github.com/shashiranjanraj/shopfront/app/routes"
	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
	"github.com/shashiranjanraj/shopfront/pkg/middleware"
	"github.com/shashiranjanraj/shopfront/pkg/reqid"
	"github.com/shashiranjanraj/shopfront/pkg/router"
)

// API builds the controllers for a.
func (a *App) API() (routes.API, error) {
	gql, err := controllers.NewGraphQLHandler(a.Products)
	if err != nil {
		return routes.API{}, fmt.Errorf("kernel: graphql schema: %w", err)
	}

	gate := auth.NewGate()
	api := routes.API{
		Products:          controllers.NewProductController(a.Products),
		Stock:             controllers.NewStockController(a.Stock),
		Import:            controllers.NewImportController(a.Import),
		Auth:              controllers.NewAuthController(gate),
		GraphQL:           gql,
		Gate:              gate,
		ImportRequireAuth: config.ImportRequireAuth(),
		Limiter:           middleware.NewLimiter(config.AuthRateLimit(), time.Minute),
	}
	if a.Disk != nil && config.StorageDisk() == "local" {
		api.Storage = controllers.NewStorageController(a.Disk, a.Import)
	}
	return api, nil
}

// RouteTable is the API with every optional route switched on and nothing
// behind it. route:list prints it without connecting any driver.
func RouteTable() routes.API {
	noop := func(http.ResponseWriter, *http.Request) {}
	return routes.API{
		GraphQL:           noop,
		Storage:           &controllers.StorageController{},
		Gate:              auth.NewGate(),
		ImportRequireAuth: config.ImportRequireAuth(),
	}
}

// NewRouter mounts the global middleware, /metrics and the API routes.
//
// Middleware order, outermost first: metrics, recovery, request id, request
// logging, CORS.
func NewRouter(api routes.API) *router.Router {
	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.ConfigCORSOptions()))

	r.Handle("/metrics", "metrics", metrics.Handler())
	routes.RegisterAPI(r, api)
	return r
}

// Handler is the HTTP handler for a.
func (a *App) Handler() (http.Handler, error) {
	api, err := a.API()
	if err != nil {
		return nil, err
	}
	return NewRouter(api), nil
}
