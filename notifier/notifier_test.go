package notifier

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emission-monitoring/models"
)

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
	require.NoError(t, err)
}

func TestBuildTable(t *testing.T) {
	events := []models.ExceedanceEvent{
		{Timestamp: time.Date(2024, 10, 2, 8, 5, 0, 0, time.UTC), Value: 120},
	}

	table := BuildTable(events, "SO2", "mg/Nm3", 100)

	assert.Contains(t, table, "120.00 mg/Nm3")
	assert.Contains(t, table, "SO2")
	assert.Contains(t, table, "2024-10-02 08:05:00")
	assert.Contains(t, table, ">100<")
}

func TestBuildTableEmpty(t *testing.T) {
	assert.Equal(t, "", BuildTable(nil, "SO2", "mg/Nm3", 100))
}

func TestRenderExceedanceSubstitutesTokens(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "ems_exceedance.html",
		"<img src=\"{{logo}}\"><h1>{{stack}}</h1><p>{{body}}</p><table>{{data}}</table>")

	impl := &Impl{TemplateLocation: dir, LogoLocation: "/opt/ems/logo_ems.png"}
	email := models.EmailDetails{Body: "Threshold exceeded."}

	html, err := impl.renderExceedance(email, "Stack 1", "<tr><td>row</td></tr>")

	require.NoError(t, err)
	assert.Contains(t, html, "cid:logo_ems.png")
	assert.Contains(t, html, "<h1>Stack 1</h1>")
	assert.Contains(t, html, "Threshold exceeded.")
	assert.Contains(t, html, "<tr><td>row</td></tr>")
	assert.NotContains(t, html, "{{")
}

func TestRenderStaleTransmission(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "ems_last_transmission.html",
		"<img src=\"{{logo}}\"><p>Last transmission: {{hours}}</p>")

	impl := &Impl{TemplateLocation: dir, LogoLocation: "logo_ems.png"}
	lastRegional := sql.NullTime{Time: time.Date(2024, 10, 2, 14, 30, 0, 0, time.UTC), Valid: true}

	html, err := impl.renderStaleTransmission(lastRegional)

	require.NoError(t, err)
	assert.Contains(t, html, "Wednesday, 02 October, 2024 02:30 PM")
	assert.NotContains(t, html, "{{hours}}")
}

func TestRenderStaleTransmissionNoRegionalData(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "ems_last_transmission.html", "{{hours}}")

	impl := &Impl{TemplateLocation: dir, LogoLocation: "logo_ems.png"}

	html, err := impl.renderStaleTransmission(sql.NullTime{})

	require.NoError(t, err)
	assert.Equal(t, "never", html)
}

func TestRenderExceedanceMissingTemplate(t *testing.T) {
	impl := &Impl{TemplateLocation: t.TempDir(), LogoLocation: "logo_ems.png"}

	_, err := impl.renderExceedance(models.EmailDetails{}, "Stack 1", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTemplate)
}
