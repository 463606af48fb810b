package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// OrdersTotal counts orders entering each status, on creation and on every status change
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Total number of orders entering each status",
		},
		[]string{"status"},
	)

	// OrderAmount tracks order totals at creation
	OrderAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_amount",
			Help:    "Total amount of created orders",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000},
		},
	)

	// ItemStock tracks the last known stock of each item
	ItemStock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "item_stock",
			Help: "Current stock of each item",
		},
		[]string{"item_id"},
	)
)

// SetItemStock records the stock of an item.
func SetItemStock(itemID int64, stock int) {
	ItemStock.WithLabelValues(strconv.FormatInt(itemID, 10)).Set(float64(stock))
}

// ForgetItem drops the stock series of a deleted item.
func ForgetItem(itemID int64) {
	ItemStock.DeleteLabelValues(strconv.FormatInt(itemID, 10))
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and durations. Requests are labelled
// with the matched route pattern so that ids don't explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).Inc()
		RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}
