package http

import (
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	SessionTTL     time.Duration
	SecureCookies  bool
	// ReserveLimit submissions per ReserveWindow per client IP.
	ReserveLimit  int
	ReserveWindow time.Duration
}

type Handlers struct {
	Catalog      *CatalogHandler
	Cart         *CartHandler
	Reservations *ReservationHandler
}

func NewHandlers(provider catalog.Provider, carts CartService, reservations ReservationService) Handlers {
	return Handlers{
		Catalog:      NewCatalogHandler(provider),
		Cart:         NewCartHandler(carts),
		Reservations: NewReservationHandler(reservations),
	}
}

func NewRouter(cfg RouterConfig, h Handlers, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	reserveLimit := httprate.Limit(
		cfg.ReserveLimit,
		cfg.ReserveWindow,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many reservations, try again later")
		}),
	)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", h.Catalog.Get)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(cfg.SessionTTL, cfg.SecureCookies))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.GetCart)
				r.Delete("/", h.Cart.ClearCart)
				r.Post("/items", h.Cart.AddItem)
				r.Put("/items/{product_id}", h.Cart.UpdateQuantity)
				r.Delete("/items/{product_id}", h.Cart.RemoveItem)
				r.Put("/transport", h.Cart.SetTransport)
			})

			r.With(reserveLimit).Post("/reservations", h.Reservations.Submit)
		})

		r.Get("/reservations/{id}", h.Reservations.Get)
	})

	return otelhttp.NewHandler(r, "storefront")
}
