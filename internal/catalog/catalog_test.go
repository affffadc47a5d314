package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefinesThreeProducts(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"GoNano Shingle Saver", "GoNano Revive", "GoNano BioBoost"}, c.Names())
	for _, e := range c.Entries() {
		assert.NotEmpty(t, e.Description, e.Name)
		assert.NotEmpty(t, e.Features, e.Name)
		assert.NotEmpty(t, e.Results, e.Name)
		assert.NotEmpty(t, e.Image, e.Name)
	}
}

func TestLookup_KnownProduct(t *testing.T) {
	c := MustLoad()
	e := c.Lookup("GoNano Revive")
	assert.Equal(t, "GoNano Revive", e.Name)
	assert.Contains(t, e.Features, "Restores shingle flexibility")

	assert.Equal(t, "GoNano BioBoost", c.Lookup("  GoNano BioBoost ").Name)
}

func TestLookup_UnknownFallsBackToDefault(t *testing.T) {
	c := MustLoad()
	for _, name := range []string{"", "Tar Paper Deluxe", "gonano revive"} {
		e := c.Lookup(name)
		assert.Equal(t, "GoNano Shingle Saver", e.Name, "name %q", name)
		assert.Equal(t, c.Default(), e)
		assert.False(t, c.Known(name))
	}
}

func TestParse_RejectsWrongProductCount(t *testing.T) {
	_, err := Parse([]byte("products:\n  - name: Only One\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must define 3 products")
}

func TestParse_RejectsDuplicates(t *testing.T) {
	raw := []byte("products:\n  - name: A\n  - name: B\n  - name: A\n")
	_, err := Parse(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defined twice")
}

func TestParse_RejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("products: [\n"))
	require.Error(t, err)
}

func TestLoadBoilerplate(t *testing.T) {
	b, err := LoadBoilerplate()
	require.NoError(t, err)
	assert.Len(t, b.Terms, TermsCount)
	assert.Equal(t, "Roof Recharge", b.Company.Name)
	assert.NotEmpty(t, b.Profile)
	assert.Len(t, b.NextSteps, 4)
	assert.Equal(t, "Thank you for considering Roof Recharge for your roof treatment needs!", b.Closing)
}

func TestParseBoilerplate_RequiresSevenTerms(t *testing.T) {
	_, err := ParseBoilerplate([]byte("company:\n  name: X\nterms:\n  - one\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must define 7 terms")
}

func TestWithCompanyName(t *testing.T) {
	b := MustLoadBoilerplate()
	renamed := b.WithCompanyName("Acme Roofing")
	assert.Equal(t, "Acme Roofing", renamed.Company.Name)
	assert.Equal(t, "Roof Recharge", b.Company.Name)
	assert.Equal(t, "Roof Recharge", b.WithCompanyName("  ").Company.Name)
}
