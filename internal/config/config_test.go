package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "direct", cfg.Sandbox.Mode)
	assert.Equal(t, 32, cfg.Sandbox.TickBudget)
	assert.Equal(t, filepath.Join(cfg.DataDir, "journal.json"), cfg.JournalPath())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: `+dir+`
journal_file: /abs/journal.json
sandbox:
  mode: script
logging:
  level: debug
`), 0o644))
	t.Setenv("FORGECORE_TICK_BUDGET", "4")
	t.Setenv("FORGECORE_ADDR", ":9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "script", cfg.Sandbox.Mode)
	assert.Equal(t, 4, cfg.Sandbox.TickBudget)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Encoding, "unset keys keep defaults")
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "/abs/journal.json", cfg.JournalPath())
	assert.Equal(t, filepath.Join(dir, "index.db"), cfg.IndexPath())
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sandbox:\n  mode: turbo\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "sandbox.mode")

	require.NoError(t, os.WriteFile(path, []byte("sandbox: [\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.ExportDir = "/srv/exports"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
