package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "APP_ADDR", "PORT", "GOTENBERG_URL", "PROPOSAL_LAYOUT",
	"MAX_UPLOAD_MB", "RATE_LIMIT_PER_MINUTE", "CORS_ORIGINS", "LOG_FORMAT",
}

// cleanEnv runs the test in an empty directory with the config variables
// unset and restored afterwards.
func cleanEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range configKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.AppAddr)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Equal(t, "standard", cfg.Layout().Name)
	assert.False(t, cfg.PDFEnabled())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadConfigPortOverride(t *testing.T) {
	cleanEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("GOTENBERG_URL", " http://gotenberg:3000 ")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.True(t, cfg.PDFEnabled())
	assert.Equal(t, "http://gotenberg:3000", cfg.GotenbergURL)
}

func TestLoadConfigRejectsUnknownLayout(t *testing.T) {
	cleanEnv(t)
	t.Setenv("PROPOSAL_LAYOUT", "glossy")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "glossy")
}

func TestLoadConfigRejectsNonPositiveUpload(t *testing.T) {
	cleanEnv(t)
	t.Setenv("MAX_UPLOAD_MB", "0")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestIsProduction(t *testing.T) {
	var nilCfg *Config
	assert.False(t, nilCfg.IsProduction())
	assert.True(t, (&Config{AppEnv: "production"}).IsProduction())
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	cleanEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("PROPOSAL_LAYOUT=premium\nCOMPANY_NAME=Acme Roofing\n"), 0o600))
	t.Setenv("COMPANY_NAME", "")
	require.NoError(t, os.Unsetenv("COMPANY_NAME"))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "premium", cfg.Layout().Name)
	assert.Equal(t, "Acme Roofing", cfg.CompanyName)
}
