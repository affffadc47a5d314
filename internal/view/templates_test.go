package view

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderIndex(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/index.html", TemplateData{
		Title: "Proposal Form",
		Data: map[string]any{
			"Products":      []string{"GoNano Revive", "GoNano BioBoost"},
			"Layouts":       []string{"classic", "standard"},
			"DefaultLayout": "standard",
			"PDF":           true,
			"MaxUploadMB":   10,
		},
	})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "<title>Proposal Form</title>")
	assert.Contains(t, body, `<option value="GoNano BioBoost">`)
	assert.Contains(t, body, `<option value="standard" selected>Standard</option>`)
	assert.Contains(t, body, `id="as-pdf"`)
	assert.Contains(t, body, `name="aerialImage"`)
}

func TestRenderNilEngine(t *testing.T) {
	var engine *Engine
	assert.Error(t, engine.Render(httptest.NewRecorder(), "pages/index.html", TemplateData{}))
}
