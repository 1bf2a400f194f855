package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	assert.NotPanics(t, func() { Register(reg) })
	assert.Panics(t, func() { Register(reg) }, "double registration must fail")
}

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "error", Result(errors.New("boom")))
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/courses/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("/courses/{id}", http.MethodGet, "404"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/courses/42", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("/courses/{id}", http.MethodGet, "404"))
	assert.Equal(t, before+1, after)
}
