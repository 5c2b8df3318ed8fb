package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SOCRATA_APP_TOKEN", "")
	t.Setenv("NYC311_BASE_URL", "")
	t.Setenv("NYC311_PAGE_SIZE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://data.cityofnewyork.us/resource", cfg.BaseURL)
	assert.Equal(t, "erm2-nwe9", cfg.DatasetID)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "data/audit.db", cfg.DBPath)
	assert.Empty(t, cfg.AppToken)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "app_token: from-yaml\npage_size: 10000\noutput_dir: reports\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SOCRATA_APP_TOKEN", "")
	t.Setenv("NYC311_OUTPUT_DIR", "")
	t.Setenv("NYC311_PAGE_SIZE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-yaml", cfg.AppToken)
	assert.Equal(t, 10000, cfg.PageSize)
	assert.Equal(t, "reports", cfg.OutputDir)
	// untouched keys keep their defaults
	assert.Equal(t, "erm2-nwe9", cfg.DatasetID)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app_token: from-yaml\n"), 0644))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SOCRATA_APP_TOKEN", "from-env")
	t.Setenv("NYC311_DATASET_ID", "test-set")
	t.Setenv("NYC311_PAGE_SIZE", "123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AppToken)
	assert.Equal(t, "test-set", cfg.DatasetID)
	assert.Equal(t, 123, cfg.PageSize)
}

func TestLoadInvalidPageSize(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("NYC311_PAGE_SIZE", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app_token: [unclosed\n"), 0644))
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	assert.Error(t, err)
}
