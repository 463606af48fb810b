package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/narocila/internal/logging"
	"github.com/erazemk/narocila/internal/store"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter creates the HTTP handler with all endpoints registered and the
// middleware stack applied.
func NewRouter(items store.ItemRepository, orders store.OrderRepository, pinger Pinger) http.Handler {
	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{Items: items}
	ordersHandler := &OrdersHandler{Orders: orders, Items: items}

	mux.HandleFunc("GET /{$}", root)
	mux.HandleFunc("GET /health", health(pinger))
	mux.Handle("GET /metrics", promhttp.Handler())

	// Items.
	mux.HandleFunc("GET /items", itemsHandler.List)
	mux.HandleFunc("POST /items", itemsHandler.Create)
	mux.HandleFunc("GET /items/{id}", itemsHandler.Get)
	mux.HandleFunc("PUT /items/{id}", itemsHandler.Update)
	mux.HandleFunc("DELETE /items/{id}", itemsHandler.Delete)

	// Orders.
	mux.HandleFunc("GET /orders", ordersHandler.List)
	mux.HandleFunc("POST /orders", ordersHandler.Create)
	mux.HandleFunc("GET /orders/{id}", ordersHandler.Get)
	mux.HandleFunc("PUT /orders/{id}", ordersHandler.UpdateStatus)
	mux.HandleFunc("DELETE /orders/{id}", ordersHandler.Delete)

	return Chain(mux)
}

// root handles GET /.
func root(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Welcome to the Items and Orders API"})
}

// health handles GET /health.
func health(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			logging.FromContext(r.Context()).WithError(err).Error("health check failed")
			jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}
