package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "sheets", cfg.SourceKind)
	require.Equal(t, 120*time.Second, cfg.CacheTTL)
	require.Equal(t, 120*time.Second, cfg.RefreshInterval)
	require.Equal(t, uint(3), cfg.FetchMaxTries)
	require.Equal(t, "America/Los_Angeles", cfg.Timezone)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.env")
	body := "SOURCE_KIND=FILE\nSOURCE_FILE=/data/srr.csv\nCACHE_TTL=30s\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("PORT", "9090")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "file", cfg.SourceKind)
	require.Equal(t, "/data/srr.csv", cfg.SourceFile)
	require.Equal(t, 30*time.Second, cfg.CacheTTL)
	require.Equal(t, "9090", cfg.Port)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base := Config{
		SourceKind:      "sheets",
		SheetCSVURL:     "https://docs.google.com/spreadsheets/d/e/x/pub?output=csv",
		Timezone:        "UTC",
		CacheTTL:        time.Minute,
		RefreshInterval: time.Minute,
	}
	require.NoError(t, base.Validate())

	c := base
	c.SheetCSVURL = ""
	require.Error(t, c.Validate())

	c = base
	c.SourceKind = "excel"
	require.Error(t, c.Validate())

	c = base
	c.SourceKind = "postgres"
	c.DatabaseURL = "postgres://localhost/srr"
	c.SourceTable = ""
	require.Error(t, c.Validate())
	c.SourceTable = "srr_interactions"
	require.NoError(t, c.Validate())

	c = base
	c.Timezone = "Mars/Olympus"
	require.Error(t, c.Validate())
	require.Equal(t, time.UTC, c.Location())

	c = base
	c.CacheTTL = 0
	require.Error(t, c.Validate())
}

func TestFetchBudget(t *testing.T) {
	c := Config{FetchTimeout: 20 * time.Second, FetchMaxTries: 3}
	require.Equal(t, 80*time.Second, c.FetchBudget())
	c.FetchMaxTries = 0
	require.Equal(t, 40*time.Second, c.FetchBudget())
	c.FetchTimeout = 0
	require.Equal(t, time.Duration(0), c.FetchBudget())
}
