package document

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roofrecharge/proposal-generator/internal/assets"
	"github.com/roofrecharge/proposal-generator/internal/catalog"
	"github.com/roofrecharge/proposal-generator/internal/proposal"
)

// Colours used throughout the proposal.
const (
	AccentColor = "2E8B57"
	MutedColor  = "666666"
	LightFill   = "E8F5E9"
	White       = "FFFFFF"
)

// Placeholder lines printed when a picture slot has nothing to show.
const (
	AerialPlaceholder  = "Aerial image not provided"
	ProductPlaceholder = "Product image unavailable"
)

// Product is one solution section: the catalog entry, its picture when it
// could be loaded, and the labels of the roofs it applies to.
type Product struct {
	Entry      catalog.Entry
	Image      *assets.Asset
	RoofLabels []string
}

// Input is everything the assembler needs. RoofProducts holds the resolved
// product name for each entry of Costs.Roofs.
type Input struct {
	Request      *proposal.Request
	Costs        proposal.CostBreakdown
	RoofProducts []string
	Products     []Product
	Boilerplate  *catalog.Boilerplate
	Logo         *assets.Asset
	Chart        *assets.Asset
	Aerial       *assets.Asset
	Date         time.Time
	Reference    string
}

// Assemble lays out a proposal.
func Assemble(in Input, layout Layout) Document {
	a := assembler{in: in, layout: layout, company: in.Boilerplate.Company}
	a.cover()
	a.companyProfile()
	a.projectDescription()
	a.solutions()
	a.investment()
	a.savings()
	a.nextSteps()
	a.authorization()
	a.terms()
	a.notes()
	a.preparedBy()
	a.closing()

	doc := Document{
		Title:   fmt.Sprintf("%s Proposal for %s", a.company.Name, displayName(in.Request.CustomerName)),
		Subject: "Roof treatment proposal " + in.Reference,
		Author:  a.company.Name,
		Created: in.Date,
		Blocks:  a.blocks,
	}
	if layout.Header {
		doc.Header = &Paragraph{
			Align: AlignRight,
			Runs: []Run{{
				Text:  fmt.Sprintf("%s | Proposal %s", a.company.Name, in.Reference),
				Size:  16,
				Color: MutedColor,
			}},
		}
	}
	if layout.PageNumbers {
		doc.Footer = &Footer{
			Text:        "Prepared for " + displayName(in.Request.CustomerName),
			PageNumbers: true,
		}
	}
	return doc
}

type assembler struct {
	in      Input
	layout  Layout
	company catalog.Company
	blocks  []Block
}

func (a *assembler) add(blocks ...Block) {
	a.blocks = append(a.blocks, blocks...)
}

func (a *assembler) cover() {
	if a.layout.Logo && a.in.Logo != nil {
		a.add(picture(a.in.Logo, 2.0, AlignCenter))
	}
	a.add(
		Paragraph{
			Heading:      1,
			Align:        AlignCenter,
			SpacingAfter: 200,
			Runs:         []Run{{Text: strings.ToUpper(a.company.Name), Bold: true, Size: 48, Color: AccentColor}},
		},
		Paragraph{
			Align:        AlignCenter,
			SpacingAfter: 400,
			Runs:         []Run{{Text: a.company.Tagline, Size: 24, Color: MutedColor}},
		},
		heading("CUSTOMER INFORMATION"),
		labelTable([][2]string{
			{"Customer Name:", a.in.Request.CustomerName},
			{"Address:", a.in.Request.CustomerAddress},
			{"City, State ZIP:", a.in.Request.CustomerCity},
			{"Proposal Date:", proposal.FormatDate(a.in.Date)},
			{"Proposal Reference:", a.in.Reference},
		}),
	)
	if a.layout.CoverPage {
		a.add(PageBreak{})
	} else {
		a.add(spacer())
	}
}

func (a *assembler) companyProfile() {
	a.add(heading("ABOUT " + strings.ToUpper(a.company.Name)))
	for _, p := range a.in.Boilerplate.Profile {
		a.add(Paragraph{SpacingAfter: 200, Runs: []Run{{Text: p}}})
	}
	a.add(spacer())
}

func (a *assembler) projectDescription() {
	a.add(heading("PROJECT DESCRIPTION"))

	address := a.in.Request.CustomerAddress
	if city := strings.TrimSpace(a.in.Request.CustomerCity); city != "" {
		if strings.TrimSpace(address) != "" {
			address += ", "
		}
		address += city
	}
	rows := [][2]string{{"Property Address:", address}}
	multi := a.in.Costs.MultiRoof()
	for i, rc := range a.in.Costs.Roofs {
		prefix, noun := "", "Roof "
		if multi {
			prefix, noun = rc.Roof.Label+" ", rc.Roof.Label+" "
		}
		rows = append(rows,
			[2]string{noun + "Type:", rc.Roof.Type},
			[2]string{noun + "Age:", strconv.Itoa(rc.Roof.Age) + " years"},
			[2]string{prefix + "Square Footage:", proposal.FormatArea(rc.Roof.Area)},
			[2]string{prefix + "Treatment:", a.roofProduct(i)},
		)
	}
	if multi {
		rows = append(rows, [2]string{"Total Square Footage:", proposal.FormatArea(a.in.Costs.TotalArea)})
	}
	a.add(labelTable(rows))

	a.add(subheading("Aerial View"))
	if a.in.Aerial != nil {
		a.add(picture(a.in.Aerial, 6.0, AlignCenter))
	} else {
		a.add(placeholder(AerialPlaceholder))
	}
	a.add(spacer())
}

func (a *assembler) roofProduct(i int) string {
	if i < len(a.in.RoofProducts) {
		return a.in.RoofProducts[i]
	}
	return a.in.Costs.Roofs[i].Roof.Product
}

func (a *assembler) solutions() {
	title := "RECOMMENDED SOLUTION"
	if len(a.in.Products) > 1 {
		title = "RECOMMENDED SOLUTIONS"
	}
	a.add(heading(title))

	for _, p := range a.in.Products {
		a.add(Paragraph{
			SpacingBefore: 100,
			SpacingAfter:  100,
			Runs:          []Run{{Text: p.Entry.Name, Bold: true, Size: 24, Color: AccentColor}},
		})
		if p.Entry.Headline != "" {
			a.add(Paragraph{SpacingAfter: 100, Runs: []Run{{Text: p.Entry.Headline, Italic: true, Color: MutedColor}}})
		}
		if a.in.Costs.MultiRoof() && len(p.RoofLabels) > 0 {
			a.add(Paragraph{SpacingAfter: 100, Runs: []Run{
				{Text: "Applies to: ", Bold: true},
				{Text: strings.Join(p.RoofLabels, ", ")},
			}})
		}

		overview := Paragraph{SpacingAfter: 200, Runs: []Run{{Text: p.Entry.Description}}}
		switch {
		case a.layout.ProductImages && p.Entry.Image != "" && p.Image != nil:
			a.add(Table{
				Widths: []int{60, 40},
				Rows: []Row{{Cells: []Cell{
					{Blocks: []Block{overview}},
					{Blocks: []Block{picture(p.Image, 2.2, AlignCenter)}},
				}}},
			})
		case a.layout.ProductImages && p.Entry.Image != "":
			a.add(overview, placeholder(ProductPlaceholder))
		default:
			a.add(overview)
		}

		a.add(label("Key Features:"))
		for _, f := range p.Entry.Features {
			a.add(bullet(f))
		}
		if len(p.Entry.Results) > 0 {
			a.add(label("Proven Results:"))
			for _, r := range p.Entry.Results {
				a.add(bullet(r))
			}
		}
		if p.Entry.Notes != "" {
			a.add(Paragraph{SpacingBefore: 100, SpacingAfter: 200, Runs: []Run{
				{Text: "Notes: ", Bold: true},
				{Text: p.Entry.Notes, Italic: true},
			}})
		}
	}
	a.add(spacer())
}

func (a *assembler) investment() {
	a.add(heading("INVESTMENT BREAKDOWN"))

	costs := a.in.Costs
	multi := costs.MultiRoof()
	var rows []Row
	for i, rc := range costs.Roofs {
		suffix := ""
		if multi {
			suffix = " - " + rc.Roof.Label
		}
		product := a.roofProduct(i)
		if product == "" {
			product = "GoNano"
		}
		rows = append(rows,
			moneyRow(
				fmt.Sprintf("%s Application%s (%s × %s)", product, suffix, proposal.FormatArea(rc.Roof.Area), proposal.FormatCurrency(rc.Roof.PricePerSqFt)),
				proposal.FormatCurrency(rc.Application), LightFill, true,
			),
			moneyRow("Professional Installation"+suffix, proposal.FormatCurrency(rc.Installation), "", false),
		)
	}
	for _, s := range costs.Services {
		rows = append(rows, moneyRow(s.Description, proposal.FormatCurrency(s.Price), "", false))
	}
	rows = append(rows, highlightRow("TOTAL INVESTMENT", proposal.FormatCurrency(costs.TotalInvestment)))

	a.add(Table{Widths: []int{70, 30}, Rows: rows, Borders: true, BorderColor: AccentColor}, spacer())
}

func (a *assembler) savings() {
	a.add(heading("YOUR SAVINGS COMPARISON"))

	costs := a.in.Costs
	a.add(Table{
		Widths:      []int{70, 30},
		Borders:     true,
		BorderColor: AccentColor,
		Rows: []Row{
			moneyRow(
				fmt.Sprintf("Estimated Full Roof Replacement Cost (%s × %s)", proposal.FormatArea(costs.TotalArea), proposal.FormatCurrency(costs.ReplacementRate)),
				proposal.FormatCurrency(costs.ReplacementEstimate), "", false,
			),
			moneyRow("GoNano Treatment Investment", proposal.FormatCurrency(costs.TotalInvestment), "", false),
			highlightRow("YOUR TOTAL SAVINGS", proposal.FormatCurrency(costs.Savings())),
		},
	})
	if a.layout.ComparisonChart && a.in.Chart != nil {
		a.add(picture(a.in.Chart, 5.5, AlignCenter))
	}
	if note := a.in.Boilerplate.SavingsNote; note != "" {
		a.add(Paragraph{
			Align:         AlignCenter,
			SpacingBefore: 200,
			SpacingAfter:  200,
			Runs:          []Run{{Text: note, Italic: true, Color: AccentColor}},
		})
	}
	a.add(spacer())
}

func (a *assembler) nextSteps() {
	if len(a.in.Boilerplate.NextSteps) == 0 {
		return
	}
	a.add(heading("NEXT STEPS"))
	for i, step := range a.in.Boilerplate.NextSteps {
		a.add(Paragraph{SpacingAfter: 100, IndentLeft: 360, Runs: []Run{{Text: fmt.Sprintf("%d. %s", i+1, step)}}})
	}
	a.add(spacer())
}

func (a *assembler) authorization() {
	a.add(heading("AUTHORIZATION"))
	a.add(Paragraph{SpacingAfter: 300, Runs: []Run{{
		Text: fmt.Sprintf("By signing below, the customer accepts this proposal and authorizes %s to perform the work described above for a total investment of %s.",
			a.company.Name, proposal.FormatCurrency(a.in.Costs.TotalInvestment)),
	}}})
	line := "______________________________"
	a.add(Table{
		Widths: []int{60, 40},
		Rows: []Row{
			{Cells: []Cell{{Blocks: []Block{Text("Customer Signature: " + line)}}, {Blocks: []Block{Text("Date: ____________")}}}},
			{Cells: []Cell{{Blocks: []Block{Text("Printed Name: " + a.in.Request.CustomerName)}}, {Blocks: []Block{Text("")}}}},
			{Cells: []Cell{{Blocks: []Block{Text(a.company.Name + " Representative: " + line)}}, {Blocks: []Block{Text("Date: ____________")}}}},
		},
	}, spacer())
}

func (a *assembler) terms() {
	a.add(Paragraph{
		Heading:         2,
		PageBreakBefore: a.layout.CoverPage,
		SpacingBefore:   200,
		SpacingAfter:    200,
		Runs:            []Run{{Text: "TERMS AND CONDITIONS", Bold: true, Size: 28, Color: AccentColor}},
	})
	for i, clause := range a.in.Boilerplate.Terms {
		a.add(Paragraph{SpacingAfter: 120, Runs: []Run{{Text: fmt.Sprintf("%d. %s", i+1, clause), Size: 18}}})
	}
	a.add(spacer())
}

func (a *assembler) notes() {
	if !a.in.Request.HasNotes() {
		return
	}
	a.add(heading("ADDITIONAL NOTES"))
	for _, line := range strings.Split(strings.TrimSpace(a.in.Request.Notes), "\n") {
		a.add(Paragraph{SpacingAfter: 100, Runs: []Run{{Text: strings.TrimRight(line, "\r")}}})
	}
	a.add(spacer())
}

func (a *assembler) preparedBy() {
	if !a.in.Request.HasRepresentative() {
		return
	}
	a.add(
		Paragraph{SpacingAfter: 100, Runs: []Run{{Text: "Prepared by:", Bold: true}}},
		Paragraph{Runs: []Run{{Text: strings.TrimSpace(a.in.Request.RepName), Bold: true, Size: 24, Color: AccentColor}}},
		Paragraph{SpacingAfter: 300, Runs: []Run{{Text: a.company.RepresentativeTitle, Italic: true, Color: MutedColor}}},
	)
}

func (a *assembler) closing() {
	if a.in.Boilerplate.Closing == "" {
		return
	}
	a.add(Paragraph{
		Align:         AlignCenter,
		SpacingBefore: 400,
		Runs:          []Run{{Text: a.in.Boilerplate.Closing, Bold: true, Size: 24, Color: AccentColor}},
	})
}

func heading(text string) Paragraph {
	return Paragraph{
		Heading:       2,
		SpacingBefore: 200,
		SpacingAfter:  200,
		Runs:          []Run{{Text: text, Bold: true, Size: 28, Color: AccentColor}},
	}
}

func subheading(text string) Paragraph {
	return Paragraph{
		Heading:       3,
		SpacingBefore: 200,
		SpacingAfter:  100,
		Runs:          []Run{{Text: text, Bold: true, Size: 24, Color: AccentColor}},
	}
}

func label(text string) Paragraph {
	return Paragraph{SpacingBefore: 100, SpacingAfter: 100, Runs: []Run{{Text: text, Bold: true}}}
}

func bullet(text string) Paragraph {
	return Paragraph{Bullet: true, IndentLeft: 360, SpacingAfter: 60, Runs: []Run{{Text: text}}}
}

func placeholder(text string) Paragraph {
	return Paragraph{Align: AlignCenter, SpacingAfter: 200, Runs: []Run{{Text: "[" + text + "]", Italic: true, Color: MutedColor}}}
}

func spacer() Paragraph {
	return Paragraph{SpacingAfter: 300}
}

func picture(asset *assets.Asset, widthInches float64, align Alignment) Image {
	return Image{
		Name:        asset.Name,
		ContentType: asset.ContentType,
		Extension:   asset.Extension,
		Data:        asset.Data,
		PixelWidth:  asset.Width,
		PixelHeight: asset.Height,
		WidthInches: widthInches,
		Align:       align,
	}
}

func labelTable(rows [][2]string) Table {
	t := Table{Widths: []int{30, 70}, Borders: true, BorderColor: AccentColor}
	for _, r := range rows {
		t.Rows = append(t.Rows, Row{Cells: []Cell{
			{Blocks: []Block{Paragraph{Runs: []Run{{Text: r[0], Bold: true}}}}},
			{Blocks: []Block{Text(r[1])}},
		}})
	}
	return t
}

func moneyRow(text, amount, fill string, bold bool) Row {
	return Row{Cells: []Cell{
		{Shading: fill, Blocks: []Block{Paragraph{Runs: []Run{{Text: text, Bold: bold}}}}},
		{Shading: fill, Blocks: []Block{Paragraph{Align: AlignRight, Runs: []Run{{Text: amount, Bold: bold}}}}},
	}}
}

func highlightRow(text, amount string) Row {
	return Row{Cells: []Cell{
		{Shading: AccentColor, Blocks: []Block{Paragraph{Runs: []Run{{Text: text, Bold: true, Size: 24, Color: White}}}}},
		{Shading: AccentColor, Blocks: []Block{Paragraph{Align: AlignRight, Runs: []Run{{Text: amount, Bold: true, Size: 24, Color: White}}}}},
	}}
}

func displayName(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return "Customer"
}
