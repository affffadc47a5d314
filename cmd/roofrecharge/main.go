package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roofrecharge/proposal-generator/internal/app"
	"github.com/roofrecharge/proposal-generator/internal/assets"
	"github.com/roofrecharge/proposal-generator/internal/catalog"
	"github.com/roofrecharge/proposal-generator/internal/generator"
	"github.com/roofrecharge/proposal-generator/internal/observability"
	"github.com/roofrecharge/proposal-generator/internal/view"
	"github.com/roofrecharge/proposal-generator/report"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	products, err := catalog.Load()
	if err != nil {
		return err
	}
	boilerplate, err := catalog.LoadBoilerplate()
	if err != nil {
		return err
	}
	if cfg.CompanyName != "" {
		boilerplate = boilerplate.WithCompanyName(cfg.CompanyName)
	}

	templates, err := view.NewEngine()
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()

	var (
		reportClient *report.Client
		converter    generator.Converter
	)
	if cfg.PDFEnabled() {
		reportClient = report.NewClient(cfg.GotenbergURL, cfg.GotenbergTimeout)
		converter = reportClient
		if err := reportClient.Ping(ctx); err != nil {
			logger.Warn("gotenberg not reachable, pdf requests will fail", slog.String("url", cfg.GotenbergURL), slog.Any("error", err))
		}
	} else {
		logger.Info("pdf conversion disabled, GOTENBERG_URL not set")
	}

	service := generator.NewService(generator.ServiceConfig{
		Logger:        logger,
		Catalog:       products,
		Boilerplate:   boilerplate,
		Assets:        assets.NewStore(cfg.AssetDir, logger),
		Converter:     converter,
		Metrics:       metrics,
		DefaultLayout: cfg.Layout(),
	})

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Templates:       templates,
		Service:         service,
		ProposalHandler: generator.NewHandler(service, logger, cfg.MaxUploadBytes()),
		ReportHandler:   report.NewHandler(reportClient, logger),
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("layout", cfg.Layout().Name),
			slog.Bool("pdf", cfg.PDFEnabled()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
