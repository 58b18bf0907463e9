package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "Tasks", cfg.TaskWorksheet)
	assert.Equal(t, "Log", cfg.LogWorksheet)
	assert.Equal(t, "Unknown", cfg.Category)
	assert.NotEmpty(t, cfg.DBPath)
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())

	require.NoError(t, Save(&Config{
		Backend:         BackendSheets,
		SpreadsheetID:   "sheet-id",
		CredentialsPath: "/tmp/creds.json",
		Timezone:        "America/Chicago",
		SlackWebhook:    "https://hooks.slack.com/services/x",
	}))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendSheets, cfg.Backend)
	assert.Equal(t, "sheet-id", cfg.SpreadsheetID)
	assert.Equal(t, "America/Chicago", cfg.Timezone)
	assert.Equal(t, "https://hooks.slack.com/services/x", cfg.SlackWebhook)
	assert.Equal(t, "Tasks", cfg.TaskWorksheet, "defaults still fill omitted fields")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&Config{Backend: BackendSQLite}).Validate())
	assert.Error(t, (&Config{Backend: BackendSheets}).Validate(), "sheets needs a spreadsheet")
	assert.Error(t, (&Config{Backend: BackendSheets, SpreadsheetID: "x"}).Validate(), "sheets needs credentials")
	assert.Error(t, (&Config{Backend: "mongo"}).Validate())
}

func TestLocation(t *testing.T) {
	loc, err := (&Config{Timezone: "America/Chicago"}).Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", loc.String())

	loc, err = (&Config{}).Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	_, err = (&Config{Timezone: "Mars/Olympus"}).Location()
	assert.Error(t, err)
}
