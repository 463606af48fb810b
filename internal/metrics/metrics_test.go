package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLabelsByPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := Middleware(mux)

	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "GET /things/{id}", "418"))

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/"+id, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	after := testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "GET /things/{id}", "418"))
	assert.Equal(t, 3.0, after-before)
}

func TestItemStockGauge(t *testing.T) {
	SetItemStock(41, 12)
	assert.Equal(t, 12.0, testutil.ToFloat64(ItemStock.WithLabelValues("41")))

	ForgetItem(41)
	assert.False(t, ItemStock.DeleteLabelValues("41"), "series should already be gone")
}
