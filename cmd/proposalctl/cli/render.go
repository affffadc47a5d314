package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roofrecharge/proposal-generator/internal/generator"
	"github.com/roofrecharge/proposal-generator/internal/proposal"
)

type renderCmd struct {
	opts   *options
	aerial string
	out    string
	format string
}

func newRenderCmd(opts *options) *cobra.Command {
	rc := &renderCmd{opts: opts}
	cmd := &cobra.Command{
		Use:   "render <request.json|->",
		Short: "Render a proposal document from a JSON request",
		Args:  cobra.ExactArgs(1),
		RunE:  rc.run,
	}
	cmd.Flags().StringVar(&rc.aerial, "aerial", "", "Aerial image to embed")
	cmd.Flags().StringVarP(&rc.out, "out", "o", "", "Output file or directory (default: named after the customer)")
	cmd.Flags().StringVar(&rc.format, "format", generator.FormatDOCX, "Output format: docx or pdf")
	return cmd
}

func (rc *renderCmd) run(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(rc.format)
	if format != generator.FormatDOCX && format != generator.FormatPDF {
		return fmt.Errorf("unsupported format %q", rc.format)
	}

	req, err := readRequest(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}
	if rc.aerial != "" {
		data, err := os.ReadFile(rc.aerial)
		if err != nil {
			return fmt.Errorf("read aerial image: %w", err)
		}
		req.AerialImage = &proposal.Image{Name: filepath.Base(rc.aerial), Data: data}
	}

	svc, err := rc.opts.service()
	if err != nil {
		return err
	}

	var res *generator.Result
	if format == generator.FormatPDF {
		res, err = svc.GeneratePDF(cmd.Context(), req)
	} else {
		res, err = svc.Generate(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	path := rc.outputPath(res.FileName)
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return fmt.Errorf("write proposal: %w", err)
	}
	fmt.Fprintf(rc.opts.stdout, "%s\t%s\t%d bytes\t%s\n", path, res.Layout, len(res.Data), res.Reference)
	return nil
}

func (rc *renderCmd) outputPath(name string) string {
	if rc.out == "" {
		return name
	}
	if info, err := os.Stat(rc.out); err == nil && info.IsDir() {
		return filepath.Join(rc.out, name)
	}
	return rc.out
}
