// Package document describes a proposal as a tree of presentational blocks
// and assembles that tree from a priced request.
package document

import "time"

// Alignment of a paragraph.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Block is one element of the document body or of a table cell.
type Block interface {
	block()
}

// Run is a span of text sharing one format. Size is in half-points.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	Size   int
	Color  string
}

// Paragraph is a line of runs.
type Paragraph struct {
	Runs            []Run
	Heading         int
	Align           Alignment
	SpacingBefore   int
	SpacingAfter    int
	IndentLeft      int
	Bullet          bool
	PageBreakBefore bool
}

// Table is a grid. Widths are percentages of the text width, one per column.
type Table struct {
	Widths      []int
	Rows        []Row
	Borders     bool
	BorderColor string
}

// Row is one table row.
type Row struct {
	Cells []Cell
}

// Cell holds blocks and an optional background fill.
type Cell struct {
	Blocks  []Block
	Shading string
}

// Image is an embedded picture. WidthInches is the printed width; the
// height follows the pixel aspect ratio.
type Image struct {
	Name        string
	ContentType string
	Extension   string
	Data        []byte
	PixelWidth  int
	PixelHeight int
	WidthInches float64
	Align       Alignment
}

// PageBreak starts a new page.
type PageBreak struct{}

func (Paragraph) block() {}
func (Table) block()     {}
func (Image) block()     {}
func (PageBreak) block() {}

// Footer is printed at the bottom of every page.
type Footer struct {
	Text        string
	PageNumbers bool
}

// Document is a complete proposal ready for serialisation.
type Document struct {
	Title   string
	Subject string
	Author  string
	Created time.Time
	Header  *Paragraph
	Footer  *Footer
	Blocks  []Block
}

// Text builds a single-run paragraph.
func Text(s string) Paragraph {
	return Paragraph{Runs: []Run{{Text: s}}}
}

// PlainText flattens the document text, one paragraph per line. Tests and
// previews use it.
func (d Document) PlainText() string {
	var out []byte
	var walk func(blocks []Block)
	walk = func(blocks []Block) {
		for _, b := range blocks {
			switch v := b.(type) {
			case Paragraph:
				for _, r := range v.Runs {
					out = append(out, r.Text...)
				}
				out = append(out, '\n')
			case Table:
				for _, row := range v.Rows {
					for _, cell := range row.Cells {
						walk(cell.Blocks)
					}
				}
			case Image:
				out = append(out, "[image "+v.Name+"]\n"...)
			}
		}
	}
	walk(d.Blocks)
	return string(out)
}
