// Package proposal models a roof treatment proposal request and computes
// its cost breakdown.
package proposal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxRoofs bounds the roofs list of one request.
const MaxRoofs = 20

// Request is the inbound proposal form. Field names follow the web form.
type Request struct {
	CustomerName    string `json:"customerName" validate:"max=200"`
	CustomerAddress string `json:"customerAddress" validate:"max=300"`
	CustomerCity    string `json:"customerCity" validate:"max=200"`
	Date            string `json:"proposalDate" validate:"max=64"`

	// Single-roof fields used when RoofList is empty.
	RoofType         string  `json:"roofType" validate:"max=200"`
	RoofAge          Integer `json:"roofAge"`
	SquareFeet       Number  `json:"squareFeet"`
	Product          string  `json:"gonanoProduct" validate:"max=200"`
	PricePerSqFt     Number  `json:"pricePerSqFt"`
	InstallationCost Number  `json:"installationCost"`

	RoofList RoofList `json:"roofs" validate:"max=20,dive"`

	ReplacementCostPerSqFt Number `json:"replacementCostPerSqFt"`

	Service1Description string `json:"service1Description" validate:"max=300"`
	Service1Price       Number `json:"service1Price"`
	Service2Description string `json:"service2Description" validate:"max=300"`
	Service2Price       Number `json:"service2Price"`
	Service3Description string `json:"service3Description" validate:"max=300"`
	Service3Price       Number `json:"service3Price"`

	RepName string `json:"repName" validate:"max=200"`
	Notes   string `json:"notes" validate:"max=10000"`
	Layout  string `json:"layout" validate:"max=32"`

	AerialImage *Image `json:"-"`
}

// RoofInput is one entry of the roofs list as submitted.
type RoofInput struct {
	RoofType         string  `json:"roofType" validate:"max=200"`
	RoofAge          Integer `json:"roofAge"`
	SquareFeet       Number  `json:"squareFeet"`
	Product          string  `json:"gonanoProduct" validate:"max=200"`
	PricePerSqFt     Number  `json:"pricePerSqFt"`
	InstallationCost Number  `json:"installationCost"`
}

// RoofList decodes either a JSON array of roofs or a string holding one,
// which is how multipart forms submit it. Undecodable input is an empty list.
type RoofList []RoofInput

// UnmarshalJSON implements json.Unmarshaler.
func (l *RoofList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*l = nil
			return nil
		}
		roofs, _ := DecodeRoofsField(s)
		*l = roofs
		return nil
	}
	var roofs []RoofInput
	if err := json.Unmarshal(data, &roofs); err != nil {
		*l = nil
		return nil
	}
	*l = roofs
	return nil
}

// DecodeRoofsField parses the JSON-encoded roofs form field. On error the
// returned list is empty and the error is only worth logging.
func DecodeRoofsField(s string) (RoofList, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var roofs []RoofInput
	if err := json.Unmarshal([]byte(s), &roofs); err != nil {
		return nil, fmt.Errorf("decode roofs field: %w", err)
	}
	return roofs, nil
}

// Image is an uploaded picture held in memory.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Roof is a normalised roof record. Label is "Roof N" for list-shaped
// requests and empty for the single-roof shape.
type Roof struct {
	Label        string  `json:"label,omitempty"`
	Type         string  `json:"type"`
	Age          int     `json:"age"`
	Area         float64 `json:"area"`
	Product      string  `json:"product"`
	PricePerSqFt float64 `json:"pricePerSqFt"`
	Installation float64 `json:"installation"`
}

// ServiceLine is an optional flat-fee custom service.
type ServiceLine struct {
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Populated reports whether the line belongs on the proposal.
func (s ServiceLine) Populated() bool {
	return strings.TrimSpace(s.Description) != "" && s.Price > 0
}

// Roofs returns the roofs of the request. A non-empty roofs list wins and
// each entry is labelled "Roof N"; otherwise the single-roof fields form one
// unlabelled roof.
func (r *Request) Roofs() []Roof {
	if len(r.RoofList) == 0 {
		return []Roof{{
			Type:         r.RoofType,
			Age:          r.RoofAge.Int(),
			Area:         r.SquareFeet.Float(),
			Product:      r.Product,
			PricePerSqFt: r.PricePerSqFt.Float(),
			Installation: r.InstallationCost.Float(),
		}}
	}
	out := make([]Roof, len(r.RoofList))
	for i, in := range r.RoofList {
		out[i] = Roof{
			Label:        fmt.Sprintf("Roof %d", i+1),
			Type:         in.RoofType,
			Age:          in.RoofAge.Int(),
			Area:         in.SquareFeet.Float(),
			Product:      in.Product,
			PricePerSqFt: in.PricePerSqFt.Float(),
			Installation: in.InstallationCost.Float(),
		}
	}
	return out
}

// Services returns the three custom service slots in form order.
func (r *Request) Services() []ServiceLine {
	return []ServiceLine{
		{Description: strings.TrimSpace(r.Service1Description), Price: r.Service1Price.Float()},
		{Description: strings.TrimSpace(r.Service2Description), Price: r.Service2Price.Float()},
		{Description: strings.TrimSpace(r.Service3Description), Price: r.Service3Price.Float()},
	}
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
}

// ProposalDate parses the requested date, falling back to now when it is
// empty or unreadable.
func (r *Request) ProposalDate(now time.Time) time.Time {
	s := strings.TrimSpace(r.Date)
	if s == "" {
		return now
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return now
}

var referenceNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://roofrecharge.example/proposals"))

// Reference is a short stable identifier for the proposal derived from the
// customer and date.
func (r *Request) Reference(date time.Time) string {
	key := strings.Join([]string{
		strings.ToLower(strings.TrimSpace(r.CustomerName)),
		strings.ToLower(strings.TrimSpace(r.CustomerAddress)),
		date.Format("2006-01-02"),
	}, "|")
	id := uuid.NewSHA1(referenceNamespace, []byte(key))
	return "RR-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// HasNotes reports whether the notes section should be printed.
func (r *Request) HasNotes() bool { return strings.TrimSpace(r.Notes) != "" }

// HasRepresentative reports whether the prepared-by byline should be printed.
func (r *Request) HasRepresentative() bool { return strings.TrimSpace(r.RepName) != "" }
