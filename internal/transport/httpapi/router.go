// Package httpapi: REST API магазина поверх chi.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/auth"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/idempotency"
	"github.com/vladislavdragonenkov/storefront/internal/service/locator"
)

const defaultRequestTimeout = 15 * time.Second

// Deps: сервисы, которые обслуживает API.
type Deps struct {
	Auth        *auth.Service
	Catalog     *catalog.Service
	Cart        *cart.Service
	Checkout    *checkout.Service
	Locator     *locator.Service
	Idempotency *idempotency.Guard
	Metrics     *metrics.HTTPMetrics
	Logger      *log.Entry
	// RequestTimeout ограничивает время обработки одного запроса; 0, значение по умолчанию.
	RequestTimeout time.Duration
}

// API: HTTP-обработчики магазина.
type API struct {
	auth        *auth.Service
	catalog     *catalog.Service
	cart        *cart.Service
	checkout    *checkout.Service
	locator     *locator.Service
	idempotency *idempotency.Guard
	logger      *log.Entry
}

// NewRouter собирает маршруты и middleware.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "http")
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	api := &API{
		auth:        deps.Auth,
		catalog:     deps.Catalog,
		cart:        deps.Cart,
		checkout:    deps.Checkout,
		locator:     deps.Locator,
		idempotency: deps.Idempotency,
		logger:      logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(logger, deps.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(attachUser(deps.Auth))

	r.Get("/", api.root)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", api.register)
		r.Post("/login", api.login)
		r.With(requireAuth).Get("/me", api.me)
	})

	r.Get("/categories", api.listCategories)
	r.Get("/products", api.listProducts)
	r.Get("/products/{id}", api.getProduct)

	r.Get("/stores", api.allStores)
	r.Get("/stores/nearby", api.nearbyStores)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/cart", api.getCart)
		r.Post("/cart/items", api.upsertCartItem)
		r.Patch("/cart/items/{itemId}", api.updateCartItem)
		r.Delete("/cart/items/{itemId}", api.removeCartItem)

		r.Post("/orders/checkout", api.checkoutOrder)
		r.Post("/orders/confirm", api.confirmOrder)
		r.Get("/orders", api.listOrders)
		r.Get("/orders/{id}", api.getOrder)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Status: "not_found", Message: "Route not found"})
	})

	return r
}

func (a *API) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"message":   "Service is healthy",
		"timestamp": time.Now().UTC(),
	})
}
