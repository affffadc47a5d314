// Package cli implements proposalctl, which renders and prices proposals
// from JSON request files without running the server.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roofrecharge/proposal-generator/internal/assets"
	"github.com/roofrecharge/proposal-generator/internal/catalog"
	"github.com/roofrecharge/proposal-generator/internal/document"
	"github.com/roofrecharge/proposal-generator/internal/generator"
	"github.com/roofrecharge/proposal-generator/internal/proposal"
	"github.com/roofrecharge/proposal-generator/report"
)

// options are the flags shared by every subcommand.
type options struct {
	assetDir     string
	layout       string
	companyName  string
	gotenbergURL string
	verbose      bool

	stdout io.Writer
	stderr io.Writer
}

// NewRootCmd builds the proposalctl command tree.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{stdout: stdout, stderr: stderr}
	cmd := &cobra.Command{
		Use:          "proposalctl",
		Short:        "Render and price GoNano roof proposals",
		SilenceUsage: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVar(&opts.assetDir, "assets", envOr("ASSET_DIR", "assets"), "Directory holding logo, chart and product images")
	cmd.PersistentFlags().StringVar(&opts.layout, "layout", envOr("PROPOSAL_LAYOUT", document.Standard.Name), "Default layout when the request names none")
	cmd.PersistentFlags().StringVar(&opts.companyName, "company", os.Getenv("COMPANY_NAME"), "Override the company name in proposal text")
	cmd.PersistentFlags().StringVar(&opts.gotenbergURL, "gotenberg", os.Getenv("GOTENBERG_URL"), "Gotenberg base URL for PDF output")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log progress to stderr")

	cmd.AddCommand(
		newRenderCmd(opts),
		newCalcCmd(opts),
		newProductsCmd(opts),
	)
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (o *options) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: level}))
}

// service wires a generator.Service from the flags.
func (o *options) service() (*generator.Service, error) {
	layout, ok := document.LookupLayout(o.layout)
	if !ok {
		return nil, fmt.Errorf("unknown layout %q (want one of %v)", o.layout, document.LayoutNames())
	}
	products, err := catalog.Load()
	if err != nil {
		return nil, err
	}
	boilerplate, err := catalog.LoadBoilerplate()
	if err != nil {
		return nil, err
	}
	if o.companyName != "" {
		boilerplate = boilerplate.WithCompanyName(o.companyName)
	}

	logger := o.logger()
	cfg := generator.ServiceConfig{
		Logger:        logger,
		Catalog:       products,
		Boilerplate:   boilerplate,
		Assets:        assets.NewStore(o.assetDir, logger),
		DefaultLayout: layout,
	}
	if o.gotenbergURL != "" {
		cfg.Converter = report.NewClient(o.gotenbergURL, 0)
	}
	return generator.NewService(cfg), nil
}

// readRequest decodes a JSON proposal request from path, or stdin for "-".
func readRequest(stdin io.Reader, path string) (*proposal.Request, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = f.Close()
		}()
		r = f
	}
	var req proposal.Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &req, nil
}
