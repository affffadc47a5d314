package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/roofrecharge/proposal-generator/internal/document"
	"github.com/roofrecharge/proposal-generator/internal/generator"
	"github.com/roofrecharge/proposal-generator/internal/observability"
	"github.com/roofrecharge/proposal-generator/internal/view"
	"github.com/roofrecharge/proposal-generator/report"
	"github.com/roofrecharge/proposal-generator/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Templates       *view.Engine
	Service         *generator.Service
	ProposalHandler *generator.Handler
	ReportHandler   *report.Handler
	Metrics         *observability.Metrics
}

// formPage is the data behind the proposal form.
type formPage struct {
	Products      []string
	Layouts       []string
	DefaultLayout string
	PDF           bool
	MaxUploadMB   int64
}

// NewRouter constructs the chi.Router with the application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		page := formPage{
			Layouts:       document.LayoutNames(),
			DefaultLayout: params.Config.Layout().Name,
			MaxUploadMB:   params.Config.MaxUploadMB,
		}
		if params.Service != nil {
			for _, p := range params.Service.Products() {
				page.Products = append(page.Products, p.Name)
			}
			page.PDF = params.Service.CanConvert()
		}
		data := view.TemplateData{
			Title:       "Roof Recharge Proposal Generator",
			CurrentPath: r.URL.Path,
			Data:        page,
		}
		if err := params.Templates.Render(w, "pages/index.html", data); err != nil {
			params.Logger.Error("render index", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(RateLimit(params.Config))
		if params.ProposalHandler != nil {
			params.ProposalHandler.MountRoutes(r)
		}
		if params.ReportHandler != nil {
			r.Route("/report", params.ReportHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
