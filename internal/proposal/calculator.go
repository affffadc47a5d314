package proposal

import (
	"encoding/json"
	"math"
)

// RoofCost is the cost of treating one roof.
type RoofCost struct {
	Roof         Roof    `json:"roof"`
	Application  float64 `json:"application"`
	Installation float64 `json:"installation"`
	Replacement  float64 `json:"replacement"`
}

// CostBreakdown is derived from a request and never stored. Savings is
// computed on demand so it always matches the totals.
type CostBreakdown struct {
	Roofs               []RoofCost    `json:"roofs"`
	Services            []ServiceLine `json:"services"`
	ReplacementRate     float64       `json:"replacementRate"`
	TotalArea           float64       `json:"totalArea"`
	TotalApplication    float64       `json:"totalApplication"`
	TotalInstallation   float64       `json:"totalInstallation"`
	ServicesTotal       float64       `json:"servicesTotal"`
	TotalInvestment     float64       `json:"totalInvestment"`
	ReplacementEstimate float64       `json:"replacementEstimate"`
}

// Savings is the replacement estimate minus the total investment.
func (c CostBreakdown) Savings() float64 {
	return finite(c.ReplacementEstimate - c.TotalInvestment)
}

// MultiRoof reports whether more than one roof is priced.
func (c CostBreakdown) MultiRoof() bool { return len(c.Roofs) > 1 }

// MarshalJSON adds the derived savings figure.
func (c CostBreakdown) MarshalJSON() ([]byte, error) {
	type plain CostBreakdown
	return json.Marshal(struct {
		plain
		Savings float64 `json:"savings"`
	}{plain: plain(c), Savings: c.Savings()})
}

// Calculate prices every roof against the replacement rate and adds the
// populated custom services. No rounding happens here.
func Calculate(roofs []Roof, services []ServiceLine, replacementRate float64) CostBreakdown {
	out := CostBreakdown{
		Roofs:           make([]RoofCost, 0, len(roofs)),
		Services:        make([]ServiceLine, 0, len(services)),
		ReplacementRate: replacementRate,
	}
	for _, roof := range roofs {
		rc := RoofCost{
			Roof:         roof,
			Application:  finite(roof.Area * roof.PricePerSqFt),
			Installation: roof.Installation,
			Replacement:  finite(roof.Area * replacementRate),
		}
		out.Roofs = append(out.Roofs, rc)
		out.TotalArea += roof.Area
		out.TotalApplication += rc.Application
		out.TotalInstallation += rc.Installation
		out.ReplacementEstimate += rc.Replacement
	}
	for _, s := range services {
		if !s.Populated() {
			continue
		}
		out.Services = append(out.Services, s)
		out.ServicesTotal += s.Price
	}
	out.TotalArea = finite(out.TotalArea)
	out.TotalApplication = finite(out.TotalApplication)
	out.TotalInstallation = finite(out.TotalInstallation)
	out.ServicesTotal = finite(out.ServicesTotal)
	out.ReplacementEstimate = finite(out.ReplacementEstimate)
	out.TotalInvestment = finite(out.TotalApplication + out.TotalInstallation + out.ServicesTotal)
	return out
}

// finite degrades an overflowed figure to zero, the value any other
// unusable number gets.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// CalculateRequest is Calculate over a request's roofs and services.
func CalculateRequest(r *Request) CostBreakdown {
	return Calculate(r.Roofs(), r.Services(), r.ReplacementCostPerSqFt.Float())
}
