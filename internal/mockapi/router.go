package mockapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/utafrali/storefront/internal/metrics"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

// RouterConfig configures NewRouter.
type RouterConfig struct {
	BasePath string
	// Validate authenticates user document routes. Nil disables auth.
	Validate middleware.TokenValidator
}

// NewRouter creates a chi router serving the backend contract under
// cfg.BasePath, plus health and metrics endpoints at the root.
func NewRouter(h *Handler, healthHandler *health.Handler, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("mockapi"))
	r.Use(middleware.Tracing("mockapi"))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", metrics.Handler())

	api := func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteData(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{slug}/subcategories", h.ListSubcategories)

		r.Route("/users/{id}", func(r chi.Router) {
			if cfg.Validate != nil {
				r.Use(middleware.Auth(cfg.Validate))
				r.Use(middleware.RequireSelf("id"))
				r.Use(middleware.RequestLogger(logger))
			}
			r.Get("/cart", h.GetCart)
			r.Put("/cart", h.PutCart)
			r.Get("/wishlist", h.GetWishlist)
			r.Put("/wishlist", h.PutWishlist)
		})
	}

	if cfg.BasePath == "" || cfg.BasePath == "/" {
		api(r)
	} else {
		r.Route(cfg.BasePath, api)
	}

	return r
}
