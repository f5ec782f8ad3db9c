package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.PagesRendered.WithLabelValues("model").Inc()
	m.PagesRendered.WithLabelValues("model").Inc()
	m.CatalogReloads.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PagesRendered.WithLabelValues("model")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogReloads))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `vacuumhub_pages_rendered_total{kind="model"} 2`)
}

func TestMetricsAreIsolated(t *testing.T) {
	// two instances must not collide on registration
	a := NewMetrics()
	b := NewMetrics()
	a.CatalogReloads.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CatalogReloads))
}
