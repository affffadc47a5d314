package proposal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	cases := map[string]float64{
		"1500":      1500,
		" 1.20 ":    1.2,
		"12.5 sqft": 12.5,
		"-3":        -3,
		".5":        0.5,
		"5.":        5,
		"1e3":       1000,
		"1e":        1,
		"abc":       0,
		"":          0,
		"$1.20":     0,
		"1,200":     1,
		"NaN":       0,
		"Infinity":  0,
		"1e400":     0,
	}
	for in, want := range cases {
		assert.InDelta(t, want, ParseNumber(in), 1e-12, "input %q", in)
	}
}

func TestParseInt(t *testing.T) {
	cases := map[string]int{
		"12":           12,
		"12.9":         12,
		" 7yrs":        7,
		"-2":           -2,
		"old":          0,
		"":             0,
		"999999999999": 0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseInt(in), "input %q", in)
	}
}

func TestRequest_DecodeLenientNumbers(t *testing.T) {
	body := `{
		"customerName": "Jane Doe",
		"squareFeet": "1500",
		"pricePerSqFt": 1.2,
		"installationCost": "n/a",
		"roofAge": "12.7",
		"replacementCostPerSqFt": null,
		"service1Price": true
	}`

	var req Request
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, 1500.0, req.SquareFeet.Float())
	assert.Equal(t, 1.2, req.PricePerSqFt.Float())
	assert.Zero(t, req.InstallationCost.Float())
	assert.Equal(t, 12, req.RoofAge.Int())
	assert.Zero(t, req.ReplacementCostPerSqFt.Float())
	assert.Zero(t, req.Service1Price.Float())
}

func TestRoofList_AcceptsArrayAndEncodedString(t *testing.T) {
	var fromArray Request
	require.NoError(t, json.Unmarshal([]byte(`{"roofs":[{"squareFeet":"800","roofAge":"5"},{"squareFeet":1200}]}`), &fromArray))
	require.Len(t, fromArray.RoofList, 2)
	assert.Equal(t, 800.0, fromArray.RoofList[0].SquareFeet.Float())
	assert.Equal(t, 5, fromArray.RoofList[0].RoofAge.Int())

	var fromString Request
	require.NoError(t, json.Unmarshal([]byte(`{"roofs":"[{\"squareFeet\":\"800\"}]"}`), &fromString))
	require.Len(t, fromString.RoofList, 1)
	assert.Equal(t, 800.0, fromString.RoofList[0].SquareFeet.Float())

	var garbage Request
	require.NoError(t, json.Unmarshal([]byte(`{"roofs":"not json","squareFeet":10}`), &garbage))
	assert.Empty(t, garbage.RoofList)
	assert.Len(t, garbage.Roofs(), 1)
	assert.Equal(t, 10.0, garbage.Roofs()[0].Area)
}

func TestDecodeRoofsField(t *testing.T) {
	roofs, err := DecodeRoofsField(`[{"roofType":"Metal","squareFeet":"abc","pricePerSqFt":"2"}]`)
	require.NoError(t, err)
	require.Len(t, roofs, 1)
	assert.Equal(t, "Metal", roofs[0].RoofType)
	assert.Zero(t, roofs[0].SquareFeet.Float())
	assert.Equal(t, 2.0, roofs[0].PricePerSqFt.Float())

	roofs, err = DecodeRoofsField("{broken")
	require.Error(t, err)
	assert.Empty(t, roofs)

	roofs, err = DecodeRoofsField("  ")
	require.NoError(t, err)
	assert.Empty(t, roofs)
}

func TestRequest_RoofsLabelsListShape(t *testing.T) {
	req := &Request{
		RoofType: "ignored when list present",
		RoofList: RoofList{{RoofType: "Asphalt"}, {RoofType: "Tile"}, {RoofType: "Metal"}},
	}
	roofs := req.Roofs()
	require.Len(t, roofs, 3)
	for i, want := range []string{"Roof 1", "Roof 2", "Roof 3"} {
		assert.Equal(t, want, roofs[i].Label)
	}
	assert.Equal(t, "Tile", roofs[1].Type)
}

func TestRequest_Services(t *testing.T) {
	req := &Request{Service2Description: "  Gutter guard  ", Service2Price: 80}
	services := req.Services()
	require.Len(t, services, 3)
	assert.False(t, services[0].Populated())
	assert.True(t, services[1].Populated())
	assert.Equal(t, "Gutter guard", services[1].Description)
}

func TestRequest_ProposalDate(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

	cases := map[string]string{
		"":                     "October 15, 2026",
		"2024-03-15":           "March 15, 2024",
		"03/15/2024":           "March 15, 2024",
		"March 15, 2024":       "March 15, 2024",
		"not a date":           "October 15, 2026",
		"2024-03-15T10:00:00Z": "March 15, 2024",
	}
	for in, want := range cases {
		req := &Request{Date: in}
		assert.Equal(t, want, FormatDate(req.ProposalDate(now)), "input %q", in)
	}
}

func TestRequest_ReferenceIsStable(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	a := &Request{CustomerName: "Jane Doe", CustomerAddress: "1 Elm St"}
	b := &Request{CustomerName: " jane doe ", CustomerAddress: "1 ELM ST"}
	c := &Request{CustomerName: "John Doe", CustomerAddress: "1 Elm St"}

	ref := a.Reference(date)
	assert.Regexp(t, `^RR-[0-9A-F]{8}$`, ref)
	assert.Equal(t, ref, b.Reference(date))
	assert.NotEqual(t, ref, c.Reference(date))
	assert.NotEqual(t, ref, a.Reference(date.AddDate(0, 0, 1)))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCurrency(0))
	assert.Equal(t, "$13500.00", FormatCurrency(13500))
	assert.Equal(t, "$1.23", FormatCurrency(1.234))
	assert.Equal(t, "-$250.50", FormatCurrency(-250.5))
	assert.Equal(t, "1500 sq ft", FormatArea(1500))
	assert.Equal(t, "1500.5 sq ft", FormatArea(1500.5))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "GoNano_Proposal_Jane_Doe.docx", FileName("Jane Doe", ".docx"))
	assert.Equal(t, "GoNano_Proposal_Mary_Ann_Smith.docx", FileName("  Mary \t Ann\nSmith ", ".docx"))
	assert.Equal(t, "GoNano_Proposal_Customer.pdf", FileName("", ".pdf"))
}

func TestASCIIFileName(t *testing.T) {
	assert.Equal(t, "GoNano_Proposal_Jose_Munoz.docx", ASCIIFileName("GoNano_Proposal_José_Muñoz.docx"))
	assert.Equal(t, "GoNano_Proposal_A_B_.docx", ASCIIFileName(`GoNano_Proposal_A"B\.docx`))
}
