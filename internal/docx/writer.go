// Package docx serialises a document tree into a WordprocessingML package.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/roofrecharge/proposal-generator/internal/document"
)

// Page geometry in twentieths of a point (US Letter, one inch margins).
const (
	pageWidth      = 12240
	pageHeight     = 15840
	pageMargin     = 1440
	textWidth      = pageWidth - 2*pageMargin
	textHeight     = pageHeight - 2*pageMargin
	emuPerInch     = 914400
	maxImageEMU    = textWidth * emuPerInch / 1440
	maxImageHeight = textHeight * emuPerInch / 1440
)

var errNoContent = errors.New("docx: document has no content")

// Render serialises doc into a complete .docx file held in memory.
func Render(doc document.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serialises doc as a .docx package to w.
func Write(w io.Writer, doc document.Document) error {
	if len(doc.Blocks) == 0 {
		return errNoContent
	}

	p := &pkg{
		rels: []relationship{
			{ID: "rId1", Type: relStyles, Target: "styles.xml"},
			{ID: "rId2", Type: relSettings, Target: "settings.xml"},
		},
		extensions: map[string]string{},
	}
	overrides := []override{
		{Part: "/word/document.xml", ContentType: ctDocument},
		{Part: "/word/styles.xml", ContentType: ctStyles},
		{Part: "/word/settings.xml", ContentType: ctSettings},
		{Part: "/docProps/core.xml", ContentType: ctCore},
		{Part: "/docProps/app.xml", ContentType: ctApp},
	}

	var headerXML, footerXML []byte
	var sect strings.Builder
	if doc.Header != nil {
		id := p.addRel(relHeader, "header1.xml")
		headerXML = p.headerPart(*doc.Header)
		fmt.Fprintf(&sect, `<w:headerReference w:type="default" r:id="%s"/>`, id)
		overrides = append(overrides, override{Part: "/word/header1.xml", ContentType: ctHeader})
	}
	if doc.Footer != nil {
		id := p.addRel(relFooter, "footer1.xml")
		footerXML = footerPart(*doc.Footer)
		fmt.Fprintf(&sect, `<w:footerReference w:type="default" r:id="%s"/>`, id)
		overrides = append(overrides, override{Part: "/word/footer1.xml", ContentType: ctFooter})
	}

	var body bytes.Buffer
	body.WriteString(xmlHeader)
	fmt.Fprintf(&body, `<w:document xmlns:w="%s" xmlns:r="%s" xmlns:wp="%s" xmlns:a="%s" xmlns:pic="%s"><w:body>`, nsW, nsR, nsWP, nsA, nsPic)
	p.blocks(&body, doc.Blocks)
	fmt.Fprintf(&body, `<w:sectPr>%s<w:pgSz w:w="%d" w:h="%d"/>`, sect.String(), pageWidth, pageHeight)
	fmt.Fprintf(&body, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="720" w:footer="720" w:gutter="0"/>`,
		pageMargin, pageMargin, pageMargin, pageMargin)
	body.WriteString(`</w:sectPr></w:body></w:document>`)

	modified := doc.Created
	if modified.IsZero() {
		modified = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", contentTypesXML(p.extensions, overrides)},
		{"_rels/.rels", relationshipsXML([]relationship{
			{ID: "rId1", Type: relOfficeDocument, Target: "word/document.xml"},
			{ID: "rId2", Type: relCoreProps, Target: "docProps/core.xml"},
			{ID: "rId3", Type: relExtendedProps, Target: "docProps/app.xml"},
		})},
		{"docProps/core.xml", corePropsXML(doc.Title, doc.Subject, doc.Author, doc.Created)},
		{"docProps/app.xml", appPropsXML()},
		{"word/document.xml", body.Bytes()},
		{"word/styles.xml", []byte(stylesXML)},
		{"word/settings.xml", []byte(settingsXML)},
		{"word/_rels/document.xml.rels", relationshipsXML(p.rels)},
	}
	if headerXML != nil {
		parts = append(parts, struct {
			name string
			data []byte
		}{"word/header1.xml", headerXML})
	}
	if footerXML != nil {
		parts = append(parts, struct {
			name string
			data []byte
		}{"word/footer1.xml", footerXML})
	}
	for _, m := range p.media {
		parts = append(parts, struct {
			name string
			data []byte
		}{"word/" + m.target, m.data})
	}

	for _, part := range parts {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: part.name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return fmt.Errorf("docx: create %s: %w", part.name, err)
		}
		if _, err := fw.Write(part.data); err != nil {
			return fmt.Errorf("docx: write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("docx: close package: %w", err)
	}
	return nil
}

type mediaPart struct {
	target string
	data   []byte
}

// pkg accumulates relationships and media while the body is written.
type pkg struct {
	rels       []relationship
	media      []mediaPart
	extensions map[string]string
	drawings   int
}

func (p *pkg) addRel(typ, target string) string {
	id := fmt.Sprintf("rId%d", len(p.rels)+1)
	p.rels = append(p.rels, relationship{ID: id, Type: typ, Target: target})
	return id
}

func (p *pkg) addImage(img document.Image) string {
	ext := img.Extension
	if ext == "" {
		ext = "png"
	}
	target := fmt.Sprintf("media/image%d.%s", len(p.media)+1, ext)
	p.media = append(p.media, mediaPart{target: target, data: img.Data})
	ct := img.ContentType
	if ct == "" {
		ct = "image/" + ext
	}
	p.extensions[ext] = ct
	return p.addRel(relImage, target)
}

func (p *pkg) blocks(b *bytes.Buffer, blocks []document.Block) {
	for _, blk := range blocks {
		switch v := blk.(type) {
		case document.Paragraph:
			p.paragraph(b, v)
		case document.Table:
			p.table(b, v)
		case document.Image:
			p.image(b, v)
		case document.PageBreak:
			b.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
		}
	}
}

func (p *pkg) paragraph(b *bytes.Buffer, para document.Paragraph) {
	b.WriteString(`<w:p>`)
	paragraphProps(b, para)
	if para.Bullet {
		bullet := document.Run{Text: "•\t"}
		if len(para.Runs) > 0 {
			bullet.Size, bullet.Color = para.Runs[0].Size, para.Runs[0].Color
		}
		run(b, bullet)
	}
	for _, r := range para.Runs {
		run(b, r)
	}
	b.WriteString(`</w:p>`)
}

func paragraphProps(b *bytes.Buffer, para document.Paragraph) {
	var props strings.Builder
	if para.Heading > 0 && para.Heading <= 3 {
		fmt.Fprintf(&props, `<w:pStyle w:val="Heading%d"/>`, para.Heading)
	}
	if para.PageBreakBefore {
		props.WriteString(`<w:pageBreakBefore/>`)
	}
	left := para.IndentLeft
	if para.Bullet {
		if left == 0 {
			left = 360
		}
		fmt.Fprintf(&props, `<w:tabs><w:tab w:val="left" w:pos="%d"/></w:tabs>`, left)
	}
	if para.SpacingBefore > 0 || para.SpacingAfter > 0 {
		fmt.Fprintf(&props, `<w:spacing w:before="%d" w:after="%d"/>`, para.SpacingBefore, para.SpacingAfter)
	}
	switch {
	case para.Bullet:
		fmt.Fprintf(&props, `<w:ind w:left="%d" w:hanging="240"/>`, left)
	case left > 0:
		fmt.Fprintf(&props, `<w:ind w:left="%d"/>`, left)
	}
	if para.Align != "" && para.Align != document.AlignLeft {
		fmt.Fprintf(&props, `<w:jc w:val="%s"/>`, para.Align)
	}
	if props.Len() > 0 {
		b.WriteString(`<w:pPr>`)
		b.WriteString(props.String())
		b.WriteString(`</w:pPr>`)
	}
}

func run(b *bytes.Buffer, r document.Run) {
	b.WriteString(`<w:r>`)
	var props strings.Builder
	if r.Bold {
		props.WriteString(`<w:b/><w:bCs/>`)
	}
	if r.Italic {
		props.WriteString(`<w:i/><w:iCs/>`)
	}
	if r.Color != "" {
		fmt.Fprintf(&props, `<w:color w:val="%s"/>`, attr(r.Color))
	}
	if r.Size > 0 {
		fmt.Fprintf(&props, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, r.Size, r.Size)
	}
	if props.Len() > 0 {
		b.WriteString(`<w:rPr>`)
		b.WriteString(props.String())
		b.WriteString(`</w:rPr>`)
	}
	lines := strings.Split(strings.ReplaceAll(r.Text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteString(`<w:br/>`)
		}
		segments := strings.Split(line, "\t")
		for j, seg := range segments {
			if j > 0 {
				b.WriteString(`<w:tab/>`)
			}
			if seg != "" {
				fmt.Fprintf(b, `<w:t xml:space="preserve">%s</w:t>`, text(seg))
			}
		}
	}
	b.WriteString(`</w:r>`)
}

func (p *pkg) table(b *bytes.Buffer, t document.Table) {
	widths := columnWidths(t)
	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="5000" w:type="pct"/>`)
	val, color := "nil", "auto"
	if t.Borders {
		val, color = "single", "auto"
		if t.BorderColor != "" {
			color = attr(t.BorderColor)
		}
	}
	b.WriteString(`<w:tblBorders>`)
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		if val == "nil" {
			fmt.Fprintf(b, `<w:%s w:val="nil"/>`, side)
			continue
		}
		fmt.Fprintf(b, `<w:%s w:val="%s" w:sz="4" w:space="0" w:color="%s"/>`, side, val, color)
	}
	b.WriteString(`</w:tblBorders><w:tblLayout w:type="fixed"/><w:tblLook w:val="0000"/></w:tblPr><w:tblGrid>`)
	for _, w := range widths {
		fmt.Fprintf(b, `<w:gridCol w:w="%d"/>`, w)
	}
	b.WriteString(`</w:tblGrid>`)
	for _, row := range t.Rows {
		b.WriteString(`<w:tr>`)
		for i, cell := range row.Cells {
			w := widths[len(widths)-1]
			if i < len(widths) {
				w = widths[i]
			}
			fmt.Fprintf(b, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/>`, w)
			if cell.Shading != "" {
				fmt.Fprintf(b, `<w:shd w:val="clear" w:color="auto" w:fill="%s"/>`, attr(cell.Shading))
			}
			b.WriteString(`<w:vAlign w:val="center"/></w:tcPr>`)
			p.blocks(b, cell.Blocks)
			if endsWithoutParagraph(cell.Blocks) {
				b.WriteString(`<w:p/>`)
			}
			b.WriteString(`</w:tc>`)
		}
		b.WriteString(`</w:tr>`)
	}
	b.WriteString(`</w:tbl>`)
}

// endsWithoutParagraph reports whether a cell needs a trailing empty
// paragraph; a table cell must end with one.
func endsWithoutParagraph(blocks []document.Block) bool {
	if len(blocks) == 0 {
		return true
	}
	_, isTable := blocks[len(blocks)-1].(document.Table)
	return isTable
}

func columnWidths(t document.Table) []int {
	cols := len(t.Widths)
	if cols == 0 {
		for _, row := range t.Rows {
			if len(row.Cells) > cols {
				cols = len(row.Cells)
			}
		}
		if cols == 0 {
			cols = 1
		}
		out := make([]int, cols)
		for i := range out {
			out[i] = textWidth / cols
		}
		return out
	}
	out := make([]int, cols)
	for i, pct := range t.Widths {
		out[i] = textWidth * pct / 100
	}
	return out
}

func (p *pkg) image(b *bytes.Buffer, img document.Image) {
	if len(img.Data) == 0 || img.PixelWidth <= 0 || img.PixelHeight <= 0 {
		return
	}
	id := p.addImage(img)
	p.drawings++
	cx := int64(img.WidthInches * emuPerInch)
	if cx <= 0 || cx > maxImageEMU {
		cx = maxImageEMU
	}
	cy := cx * int64(img.PixelHeight) / int64(img.PixelWidth)
	if cy > maxImageHeight {
		cy = maxImageHeight
		cx = max(cy*int64(img.PixelWidth)/int64(img.PixelHeight), 1)
	}

	b.WriteString(`<w:p>`)
	if img.Align != "" && img.Align != document.AlignLeft {
		fmt.Fprintf(b, `<w:pPr><w:jc w:val="%s"/></w:pPr>`, img.Align)
	}
	name := text(img.Name)
	fmt.Fprintf(b, `<w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%d" cy="%d"/><wp:effectExtent l="0" t="0" r="0" b="0"/>`+
		`<wp:docPr id="%d" name="Picture %d" descr="%s"/>`+
		`<wp:cNvGraphicFramePr><a:graphicFrameLocks noChangeAspect="1"/></wp:cNvGraphicFramePr>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic><pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`,
		cx, cy, p.drawings, p.drawings, name, p.drawings, name, id, cx, cy)
	b.WriteString(`</w:p>`)
}

func (p *pkg) headerPart(para document.Paragraph) []byte {
	var b bytes.Buffer
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<w:hdr xmlns:w="%s" xmlns:r="%s">`, nsW, nsR)
	p.paragraph(&b, para)
	b.WriteString(`</w:hdr>`)
	return b.Bytes()
}

func footerPart(f document.Footer) []byte {
	var b bytes.Buffer
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<w:ftr xmlns:w="%s" xmlns:r="%s">`, nsW, nsR)
	b.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>`)
	small := document.Run{Size: 16, Color: "666666"}
	if f.Text != "" {
		small.Text = f.Text
		if f.PageNumbers {
			small.Text += " | "
		}
		run(&b, small)
	}
	if f.PageNumbers {
		small.Text = "Page "
		run(&b, small)
		field(&b, "PAGE")
		small.Text = " of "
		run(&b, small)
		field(&b, "NUMPAGES")
	}
	b.WriteString(`</w:p></w:ftr>`)
	return b.Bytes()
}

func field(b *bytes.Buffer, instr string) {
	const rpr = `<w:rPr><w:color w:val="666666"/><w:sz w:val="16"/><w:szCs w:val="16"/></w:rPr>`
	b.WriteString(`<w:r>` + rpr + `<w:fldChar w:fldCharType="begin"/></w:r>`)
	fmt.Fprintf(b, `<w:r>`+rpr+`<w:instrText xml:space="preserve"> %s </w:instrText></w:r>`, instr)
	b.WriteString(`<w:r>` + rpr + `<w:fldChar w:fldCharType="separate"/></w:r>`)
	b.WriteString(`<w:r>` + rpr + `<w:t>1</w:t></w:r>`)
	b.WriteString(`<w:r>` + rpr + `<w:fldChar w:fldCharType="end"/></w:r>`)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
