package document

import "strings"

// Layout selects the optional sections and styling of a proposal. The
// presets correspond to the plain, multi-roof and premium generators.
type Layout struct {
	Name            string
	CoverPage       bool
	Logo            bool
	ProductImages   bool
	ComparisonChart bool
	Header          bool
	PageNumbers     bool
}

var (
	Classic = Layout{Name: "classic"}

	Standard = Layout{
		Name:        "standard",
		PageNumbers: true,
	}

	Premium = Layout{
		Name:            "premium",
		CoverPage:       true,
		Logo:            true,
		ProductImages:   true,
		ComparisonChart: true,
		Header:          true,
		PageNumbers:     true,
	}
)

var layouts = map[string]Layout{
	Classic.Name:  Classic,
	Standard.Name: Standard,
	Premium.Name:  Premium,
}

// LayoutNames lists the preset names.
func LayoutNames() []string {
	return []string{Classic.Name, Standard.Name, Premium.Name}
}

// LookupLayout returns the preset called name (case-insensitive).
func LookupLayout(name string) (Layout, bool) {
	l, ok := layouts[strings.ToLower(strings.TrimSpace(name))]
	return l, ok
}

// LayoutOrDefault returns the named preset or fallback when the name is
// empty or unknown.
func LayoutOrDefault(name string, fallback Layout) Layout {
	if l, ok := LookupLayout(name); ok {
		return l
	}
	return fallback
}
