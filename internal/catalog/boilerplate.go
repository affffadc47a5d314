package catalog

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// TermsCount is the fixed number of terms-and-conditions clauses.
const TermsCount = 7

// Company identifies the business issuing proposals.
type Company struct {
	Name                string `yaml:"name"`
	Tagline             string `yaml:"tagline"`
	RepresentativeTitle string `yaml:"representative_title"`
}

// Boilerplate is the static text shared by all proposals.
type Boilerplate struct {
	Company     Company  `yaml:"company"`
	Profile     []string `yaml:"profile"`
	NextSteps   []string `yaml:"next_steps"`
	Terms       []string `yaml:"terms"`
	Closing     string   `yaml:"closing"`
	SavingsNote string   `yaml:"savings_note"`
}

// LoadBoilerplate parses the embedded boilerplate content.
func LoadBoilerplate() (*Boilerplate, error) {
	raw, err := content.ReadFile("content/boilerplate.yaml")
	if err != nil {
		return nil, fmt.Errorf("read boilerplate: %w", err)
	}
	return ParseBoilerplate(raw)
}

// ParseBoilerplate decodes boilerplate YAML and checks its shape.
func ParseBoilerplate(raw []byte) (*Boilerplate, error) {
	var b Boilerplate
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode boilerplate: %w", err)
	}
	if len(b.Terms) != TermsCount {
		return nil, fmt.Errorf("boilerplate must define %d terms, found %d", TermsCount, len(b.Terms))
	}
	if strings.TrimSpace(b.Company.Name) == "" {
		return nil, fmt.Errorf("boilerplate company name is empty")
	}
	trimAll(b.Profile)
	trimAll(b.NextSteps)
	trimAll(b.Terms)
	b.Closing = strings.TrimSpace(b.Closing)
	b.SavingsNote = strings.TrimSpace(b.SavingsNote)
	return &b, nil
}

// MustLoadBoilerplate is LoadBoilerplate for program initialisation and tests.
func MustLoadBoilerplate() *Boilerplate {
	b, err := LoadBoilerplate()
	if err != nil {
		panic(err)
	}
	return b
}

// WithCompanyName returns a copy with the company name replaced when name is
// non-empty.
func (b Boilerplate) WithCompanyName(name string) *Boilerplate {
	if name = strings.TrimSpace(name); name != "" {
		b.Company.Name = name
	}
	return &b
}

func trimAll(items []string) {
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
}
