package app

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roofrecharge/proposal-generator/internal/catalog"
	"github.com/roofrecharge/proposal-generator/internal/docx"
	"github.com/roofrecharge/proposal-generator/internal/generator"
	"github.com/roofrecharge/proposal-generator/internal/observability"
	"github.com/roofrecharge/proposal-generator/internal/view"
	"github.com/roofrecharge/proposal-generator/report"
)

func testRouter(t *testing.T, cfg *Config) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg == nil {
		cfg = &Config{
			AppEnv:             "test",
			ProposalLayout:     "standard",
			MaxUploadMB:        10,
			RateLimitPerMinute: 100,
			CORSOrigins:        []string{"*"},
			AppRequestTimeout:  5 * time.Second,
		}
	}
	templates, err := view.NewEngine()
	require.NoError(t, err)
	metrics := observability.NewMetrics()
	svc := generator.NewService(generator.ServiceConfig{
		Logger:        logger,
		Catalog:       catalog.MustLoad(),
		Boilerplate:   catalog.MustLoadBoilerplate(),
		Metrics:       metrics,
		DefaultLayout: cfg.Layout(),
	})
	return NewRouter(RouterParams{
		Logger:          logger,
		Config:          cfg,
		Templates:       templates,
		Service:         svc,
		ProposalHandler: generator.NewHandler(svc, logger, cfg.MaxUploadBytes()),
		ReportHandler:   report.NewHandler(nil, logger),
		Metrics:         metrics,
	})
}

func TestRouterHealthz(t *testing.T) {
	router := testRouter(t, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRouterIndexPage(t *testing.T) {
	router := testRouter(t, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Roof Recharge Proposal Generator")
	for _, name := range catalog.MustLoad().Names() {
		assert.Contains(t, body, name)
	}
	assert.NotContains(t, body, `id="as-pdf"`)
}

func TestRouterGenerateProposal(t *testing.T) {
	router := testRouter(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/generate-proposal",
		strings.NewReader(`{"customerName":"Router Test","squareFeet":1000,"pricePerSqFt":1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, docx.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="GoNano_Proposal_Router_Test.docx"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestRouterReportPingDisabled(t *testing.T) {
	router := testRouter(t, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report/ping", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := testRouter(t, nil)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "roofrecharge_http_requests_total")
}

func TestRouterStaticAssets(t *testing.T) {
	router := testRouter(t, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

func TestRouterRateLimit(t *testing.T) {
	cfg := &Config{
		ProposalLayout:     "standard",
		MaxUploadMB:        1,
		RateLimitPerMinute: 2,
		AppRequestTimeout:  5 * time.Second,
	}
	router := testRouter(t, cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/generate-proposal", nil)
		req.Header.Set("Origin", "https://forms.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		CORS([]string{"*"})(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
		assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("listed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/calculate", nil)
		req.Header.Set("Origin", "https://forms.example.com")
		rec := httptest.NewRecorder()
		CORS([]string{"https://forms.example.com"})(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "https://forms.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
	})

	t.Run("preflight for unlisted method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/calculate", nil)
		req.Header.Set("Origin", "https://forms.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		rec := httptest.NewRecorder()
		CORS([]string{"*"})(next).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("unlisted origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/calculate", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		CORS([]string{"https://forms.example.com"})(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&Config{LogFormat: "json", AppEnv: "test"}, &buf).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"service":"roofrecharge"`)

	buf.Reset()
	newLogger(nil, &buf).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
