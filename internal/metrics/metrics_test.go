package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "error", Outcome(errors.New("x")))
}

func TestHandler_ExposesStorefrontMetrics(t *testing.T) {
	SyncPushes.WithLabelValues("cart", "ok").Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(SyncPushes.WithLabelValues("cart", "ok")), float64(1))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_sync_pushes_total")
}
