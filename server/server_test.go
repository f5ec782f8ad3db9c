package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/foomo/vacuumpartshub/affiliate"
	"github.com/foomo/vacuumpartshub/observability"
	"github.com/foomo/vacuumpartshub/render"
	"github.com/foomo/vacuumpartshub/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dysonV8JSON = `{
  "brand": "Dyson",
  "model": "V8",
  "manual_pdf": "",
  "seo_keywords": ["dyson v8 battery"],
  "problems": [{
    "id": "battery-wont-charge",
    "title": "Battery Won't Charge",
    "description": "The charging light does not come on.",
    "possible_causes": ["Worn battery"],
    "solution_steps": ["Replace the battery"],
    "required_parts": [{"name": "Battery Pack", "search_query": "Dyson V8 replacement battery"}]
  }]
}`

func newTestServer(t *testing.T, files map[string]string, mcpHandler http.Handler) (*Server, *observability.Metrics) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	renderer, err := render.New(render.Settings{}, affiliate.NewLinker("vacuumhub-20"))
	require.NoError(t, err)
	resolver := service.NewResolver(nil, service.ResolverSettings{DataDir: dir, Exclude: service.DefaultExclude})
	metrics := observability.NewMetrics()
	return New(nil, resolver, renderer, metrics, mcpHandler, Settings{MCPEndpoint: "/mcp"}), metrics
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestPages(t *testing.T) {
	s, metrics := newTestServer(t, map[string]string{
		"dyson-v8.json":    dysonV8JSON,
		"shark-nv352.json": `{"brand": "Shark", "model": "NV352", "problems": []}`,
		"vacuums.json":     `[]`,
	}, nil)

	rec := get(t, s, "/?q=dyson")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "1 Guides Found:", doc.Find(".models h2").Text())

	for _, target := range []string{"/guide/dyson-v8", "/guide/dyson-v8/", "/guide/dyson-v8/battery-wont-charge"} {
		rec := get(t, s, target)
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}

	rec = get(t, s, "/guide/dyson-v8/battery-wont-charge")
	assert.Contains(t, rec.Body.String(), "https://www.amazon.com/s?k=Dyson%20V8%20replacement%20battery&amp;tag=vacuumhub-20")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.PagesRendered.WithLabelValues("problem")))
}

func TestNotFound(t *testing.T) {
	s, _ := newTestServer(t, map[string]string{"dyson-v8.json": dysonV8JSON}, nil)

	for _, target := range []string{
		"/guide/dyson-v11",
		"/guide/dyson-v8/motor-smells",
		"/guide/..%2F..%2Fetc%2Fpasswd",
		"/guide/vacuums",
		"/about",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, s, target)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), "Page Not Found")
		})
	}
}

func TestMalformedDataIsServerError(t *testing.T) {
	s, _ := newTestServer(t, map[string]string{"broken.json": `{`}, nil)
	rec := get(t, s, "/guide/broken")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "broken.json")
}

func TestSEOFiles(t *testing.T) {
	s, _ := newTestServer(t, map[string]string{"dyson-v8.json": dysonV8JSON}, nil)

	rec := get(t, s, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")
	assert.Contains(t, rec.Body.String(), "<loc>https://vacuumpartshub.com/guide/dyson-v8/battery-wont-charge</loc>")

	rec = get(t, s, "/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "User-agent: *"))

	rec = get(t, s, "/static/site.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, map[string]string{"dyson-v8.json": dysonV8JSON}, nil)
	get(t, s, "/guide/dyson-v8")
	get(t, s, "/guide/nope")

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `vacuumhub_http_requests_total{code="200",route="/guide/:model"} 1`)
	assert.Contains(t, body, `vacuumhub_http_requests_total{code="404",route="/guide/:model"} 1`)
}

func TestMCPMount(t *testing.T) {
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("mcp:" + r.URL.Path))
	})
	s, _ := newTestServer(t, nil, mcpHandler)

	rec := get(t, s, "/mcp")
	assert.Equal(t, "mcp:/mcp", rec.Body.String())
	rec = get(t, s, "/mcp/sse/stats")
	assert.Equal(t, "mcp:/mcp/sse/stats", rec.Body.String())
}
