package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stocksense/stocksense/internal/inventory"
	"github.com/stocksense/stocksense/internal/masterdata/branches"
	"github.com/stocksense/stocksense/internal/masterdata/products"
	"github.com/stocksense/stocksense/internal/masterdata/warehouses"
	"github.com/stocksense/stocksense/internal/observability"
	"github.com/stocksense/stocksense/internal/procurement"
	"github.com/stocksense/stocksense/internal/reports"
	"github.com/stocksense/stocksense/internal/sales"
	"github.com/stocksense/stocksense/internal/users"
	"github.com/stocksense/stocksense/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	ProductsHandler    *products.Handler
	BranchesHandler    *branches.Handler
	WarehousesHandler  *warehouses.Handler
	InventoryHandler   *inventory.Handler
	SalesHandler       *sales.Handler
	ProcurementHandler *procurement.Handler
	ReportsHandler     *reports.Handler
	UsersHandler       *users.Handler
	JobsHandler        *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	r.Group(func(r chi.Router) {
		r.Use(ScopeMiddleware)

		r.Route("/catalog/products", params.ProductsHandler.MountRoutes)
		r.Route("/masterdata/branches", params.BranchesHandler.MountRoutes)
		r.Route("/masterdata/warehouses", params.WarehousesHandler.MountRoutes)
		r.Route("/inventory", params.InventoryHandler.MountRoutes)
		r.Route("/sales", params.SalesHandler.MountRoutes)
		r.Route("/procurement/orders", params.ProcurementHandler.MountRoutes)
		r.Route("/reports", params.ReportsHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
	})

	return r
}
