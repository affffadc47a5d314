// Package generator turns proposal requests into rendered proposal files and
// serves them over HTTP.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/roofrecharge/proposal-generator/internal/assets"
	"github.com/roofrecharge/proposal-generator/internal/catalog"
	"github.com/roofrecharge/proposal-generator/internal/document"
	"github.com/roofrecharge/proposal-generator/internal/docx"
	"github.com/roofrecharge/proposal-generator/internal/observability"
	"github.com/roofrecharge/proposal-generator/internal/platform/httpx"
	"github.com/roofrecharge/proposal-generator/internal/proposal"
)

// Output formats.
const (
	FormatDOCX = "docx"
	FormatPDF  = "pdf"
)

// PDFContentType is the MIME type of converted proposals.
const PDFContentType = "application/pdf"

// ErrPDFUnavailable is returned by GeneratePDF when no converter is configured.
var ErrPDFUnavailable = errors.New("pdf conversion not configured")

// AssetLoader reads static images. A missing asset is reported with ok=false.
type AssetLoader interface {
	Load(name string) (assets.Asset, bool)
}

// Converter turns an office document into a PDF.
type Converter interface {
	ConvertOffice(ctx context.Context, filename string, data []byte) ([]byte, error)
}

// ServiceConfig carries the collaborators of a Service. Only Catalog and
// Boilerplate are required.
type ServiceConfig struct {
	Logger        *slog.Logger
	Catalog       *catalog.Catalog
	Boilerplate   *catalog.Boilerplate
	Assets        AssetLoader
	Converter     Converter
	Metrics       *observability.Metrics
	DefaultLayout document.Layout
	Now           func() time.Time
}

// Service generates proposals. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	logger        *slog.Logger
	catalog       *catalog.Catalog
	boilerplate   *catalog.Boilerplate
	assets        AssetLoader
	converter     Converter
	metrics       *observability.Metrics
	defaultLayout document.Layout
	now           func() time.Time
	validator     *validator.Validate
}

// Result is a rendered proposal.
type Result struct {
	Data        []byte
	FileName    string
	ContentType string
	Format      string
	Layout      string
	Reference   string
	Costs       proposal.CostBreakdown
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	layout := cfg.DefaultLayout
	if layout.Name == "" {
		layout = document.Standard
	}
	return &Service{
		logger:        logger,
		catalog:       cfg.Catalog,
		boilerplate:   cfg.Boilerplate,
		assets:        cfg.Assets,
		converter:     cfg.Converter,
		metrics:       cfg.Metrics,
		defaultLayout: layout,
		now:           now,
		validator:     validator.New(),
	}
}

// Products lists the catalog in display order.
func (s *Service) Products() []catalog.Entry {
	return s.catalog.Entries()
}

// CanConvert reports whether PDF output is available.
func (s *Service) CanConvert() bool {
	return s.converter != nil
}

// Validate checks the structural limits of a request. Numeric content is
// never rejected.
func (s *Service) Validate(req *proposal.Request) error {
	if req == nil {
		return fmt.Errorf("%w: empty request", httpx.ErrValidation)
	}
	if err := s.validator.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		}
		return fmt.Errorf("%w: %s", httpx.ErrValidation, strings.Join(msgs, "; "))
	}
	return nil
}

// Calculate validates req and returns its cost breakdown.
func (s *Service) Calculate(req *proposal.Request) (proposal.CostBreakdown, error) {
	if err := s.Validate(req); err != nil {
		return proposal.CostBreakdown{}, err
	}
	return proposal.CalculateRequest(req), nil
}

// Generate renders req as a .docx proposal.
func (s *Service) Generate(ctx context.Context, req *proposal.Request) (*Result, error) {
	start := time.Now()
	res, err := s.render(ctx, req)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveProposal(res.Layout, FormatDOCX, time.Since(start))
	return res, nil
}

// GeneratePDF renders req and converts it to PDF.
func (s *Service) GeneratePDF(ctx context.Context, req *proposal.Request) (*Result, error) {
	if s.converter == nil {
		return nil, ErrPDFUnavailable
	}
	start := time.Now()
	res, err := s.render(ctx, req)
	if err != nil {
		return nil, err
	}
	pdf, err := s.converter.ConvertOffice(ctx, proposal.ASCIIFileName(res.FileName), res.Data)
	if err != nil {
		s.metrics.ProposalFailed("convert")
		return nil, fmt.Errorf("convert proposal to pdf: %w: %w", httpx.ErrUpstream, err)
	}
	res.Data = pdf
	res.ContentType = PDFContentType
	res.Format = FormatPDF
	res.FileName = strings.TrimSuffix(res.FileName, ".docx") + ".pdf"
	s.metrics.ObserveProposal(res.Layout, FormatPDF, time.Since(start))
	return res, nil
}

// Document assembles the proposal tree without serialising it.
func (s *Service) Document(ctx context.Context, req *proposal.Request) (document.Document, error) {
	in, layout, err := s.build(ctx, req)
	if err != nil {
		return document.Document{}, err
	}
	return document.Assemble(in, layout), nil
}

func (s *Service) build(ctx context.Context, req *proposal.Request) (document.Input, document.Layout, error) {
	if err := s.Validate(req); err != nil {
		s.metrics.ProposalFailed("validate")
		return document.Input{}, document.Layout{}, err
	}
	layout := document.LayoutOrDefault(req.Layout, s.defaultLayout)
	if name := strings.TrimSpace(req.Layout); name != "" && !strings.EqualFold(name, layout.Name) {
		s.logger.Warn("unknown layout, using default",
			slog.String("layout", name),
			slog.String("default", layout.Name),
		)
	}

	in, err := s.prepare(ctx, req, layout)
	if err != nil {
		s.metrics.ProposalFailed("assets")
		return document.Input{}, layout, err
	}
	return in, layout, nil
}

func (s *Service) render(ctx context.Context, req *proposal.Request) (*Result, error) {
	in, layout, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	data, err := docx.Render(document.Assemble(in, layout))
	if err != nil {
		s.metrics.ProposalFailed("render")
		return nil, fmt.Errorf("render proposal: %w", err)
	}
	res := &Result{
		Data:        data,
		FileName:    proposal.FileName(req.CustomerName, ".docx"),
		ContentType: docx.ContentType,
		Format:      FormatDOCX,
		Layout:      layout.Name,
		Reference:   in.Reference,
		Costs:       in.Costs,
	}
	s.logger.Info("proposal generated",
		slog.String("reference", res.Reference),
		slog.String("layout", layout.Name),
		slog.Int("roofs", len(in.Costs.Roofs)),
		slog.Int("bytes", len(data)),
	)
	return res, nil
}

// prepare resolves products and loads every asset the layout needs. All reads
// finish before assembly starts.
func (s *Service) prepare(ctx context.Context, req *proposal.Request, layout document.Layout) (document.Input, error) {
	costs := proposal.CalculateRequest(req)
	date := req.ProposalDate(s.now())

	in := document.Input{
		Request:      req,
		Costs:        costs,
		RoofProducts: make([]string, len(costs.Roofs)),
		Boilerplate:  s.boilerplate,
		Date:         date,
		Reference:    req.Reference(date),
	}

	seen := make(map[string]int)
	for i, rc := range costs.Roofs {
		entry := s.catalog.Lookup(rc.Roof.Product)
		if rc.Roof.Product != "" && !s.catalog.Known(rc.Roof.Product) {
			s.logger.Warn("unknown product, using default",
				slog.String("product", rc.Roof.Product),
				slog.String("default", entry.Name),
			)
		}
		in.RoofProducts[i] = entry.Name
		idx, ok := seen[entry.Name]
		if !ok {
			idx = len(in.Products)
			seen[entry.Name] = idx
			in.Products = append(in.Products, document.Product{Entry: entry})
		}
		if rc.Roof.Label != "" {
			in.Products[idx].RoofLabels = append(in.Products[idx].RoofLabels, rc.Roof.Label)
		}
	}

	if req.AerialImage != nil && len(req.AerialImage.Data) > 0 {
		aerial, err := assets.Sniff(req.AerialImage.Name, req.AerialImage.Data)
		if err != nil {
			s.logger.Warn("aerial image skipped",
				slog.String("name", req.AerialImage.Name),
				slog.Any("error", err),
			)
		} else {
			in.Aerial = &aerial
		}
	}

	if s.assets == nil {
		return in, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	load := func(name string, dst **assets.Asset) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			asset, ok := s.assets.Load(name)
			if !ok {
				s.metrics.AssetUnavailable()
				return nil
			}
			*dst = &asset
			return nil
		})
	}
	if layout.Logo {
		load(assets.Logo, &in.Logo)
	}
	if layout.ComparisonChart {
		load(assets.ComparisonChart, &in.Chart)
	}
	if layout.ProductImages {
		for i := range in.Products {
			if in.Products[i].Entry.Image != "" {
				load(in.Products[i].Entry.Image, &in.Products[i].Image)
			}
		}
	}
	if err := g.Wait(); err != nil {
		return document.Input{}, fmt.Errorf("load assets: %w", err)
	}
	return in, nil
}
