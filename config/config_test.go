package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, &Config{
		DataDir:      "data",
		Exclude:      []string{"vacuums.json", "sharks.json", "bissells.json"},
		OutDir:       "public",
		BaseURL:      "https://vacuumpartshub.com",
		SiteName:     "VacuumPartsHub",
		AffiliateTag: "vacuumhub-20",
		Listen:       ":8080",
		MCPEndpoint:  "/mcp",
		CacheTTL:     5 * time.Minute,
		Concurrency:  8,
	}, cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacuumhub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /srv/catalog
base_url: https://example.com/
affiliate_tag: file-20
cache_ttl: 30s
exclude:
  - vacuums.json
  - drafts.json
`), 0o644))
	t.Setenv("VACUUMHUB_AFFILIATE_TAG", "env-20")
	t.Setenv("VACUUMHUB_CONCURRENCY", "2")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/catalog", cfg.DataDir)
	assert.Equal(t, "https://example.com", cfg.BaseURL)
	assert.Equal(t, "env-20", cfg.AffiliateTag)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, []string{"vacuums.json", "drafts.json"}, cfg.Exclude)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("VACUUMHUB_BASE_URL", "vacuumpartshub.com")
	t.Setenv("VACUUMHUB_CONCURRENCY", "0")
	t.Setenv("VACUUMHUB_MCP_ENDPOINT", "mcp")

	_, err := Load(viper.New(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
	assert.Contains(t, err.Error(), "concurrency")
	assert.Contains(t, err.Error(), "mcp_endpoint")
	assert.NotContains(t, err.Error(), "affiliate_tag")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("VACUUMHUB_SITE_NAME=DotEnvHub\n"), 0o644))
	t.Setenv("VACUUMHUB_SITE_NAME", "")
	require.NoError(t, os.Unsetenv("VACUUMHUB_SITE_NAME"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), envFile))
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "DotEnvHub", cfg.SiteName)
}
