package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
			DataDir:     "/tmp/rymtag-data",
		},
		Logger: LoggerConfig{Level: "info"},
		Match: MatchConfig{
			SimilarityThreshold: 0.8,
			TitleMatchThreshold: 0.95,
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("rejects unknown environment", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.Environment = "testing"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects unknown log level", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logger.Level = "verbose"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects out of range thresholds", func(t *testing.T) {
		cfg := validConfig()
		cfg.Match.SimilarityThreshold = 1.5
		assert.Error(t, cfg.Validate())

		cfg = validConfig()
		cfg.Match.TitleMatchThreshold = -0.1
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty library path is allowed", func(t *testing.T) {
		cfg := validConfig()
		cfg.Library.Path = ""
		assert.NoError(t, cfg.Validate())
	})
}

func TestExpandPaths(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.expandPaths())

	assert.Equal(t, filepath.Join("/tmp/rymtag-data", "rym-catalog-cache.json"), cfg.Catalog.CacheFile)
	assert.Equal(t, filepath.Join("/tmp/rymtag-data", "rym-genre-tree.json"), cfg.Hierarchy.TreeFile)
	assert.Equal(t, filepath.Join("/tmp/rymtag-data", "excluded-meta-genres.json"), cfg.Hierarchy.ExcludedFile)
	assert.Equal(t, filepath.Join("/tmp/rymtag-data", "store"), cfg.StorePath())
}

func TestExpandPathsKeepsExplicitFiles(t *testing.T) {
	cfg := validConfig()
	cfg.Hierarchy.TreeFile = "/etc/rymtag/tree.json"
	require.NoError(t, cfg.expandPaths())
	assert.Equal(t, "/etc/rymtag/tree.json", cfg.Hierarchy.TreeFile)
}

func TestGetConfigValue(t *testing.T) {
	t.Setenv("RYMTAG_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "RYMTAG_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "RYMTAG_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "RYMTAG_TEST_MISSING", "default"))
}

func TestGetBoolConfigValue(t *testing.T) {
	assert.True(t, getBoolConfigValue("yes", "RYMTAG_TEST_BOOL", false))
	assert.True(t, getBoolConfigValue("1", "RYMTAG_TEST_BOOL", false))
	assert.False(t, getBoolConfigValue("nope", "RYMTAG_TEST_BOOL", true))
	assert.True(t, getBoolConfigValue("", "RYMTAG_TEST_BOOL", true))
}

func TestGetFloatConfigValue(t *testing.T) {
	assert.Equal(t, 0.9, getFloatConfigValue("0.9", "RYMTAG_TEST_FLOAT", 0.8))
	assert.Equal(t, 0.8, getFloatConfigValue("", "RYMTAG_TEST_FLOAT", 0.8))
	assert.Equal(t, 0.8, getFloatConfigValue("not-a-number", "RYMTAG_TEST_FLOAT", 0.8))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nRYMTAG_ENVFILE_A=hello\nRYMTAG_ENVFILE_B=\"quoted\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Cleanup(func() {
		os.Unsetenv("RYMTAG_ENVFILE_A")
		os.Unsetenv("RYMTAG_ENVFILE_B")
	})

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("RYMTAG_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("RYMTAG_ENVFILE_B"))
}

func TestLoadEnvFileRespectsExistingEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("RYMTAG_ENVFILE_C=file\n"), 0o600))

	t.Setenv("RYMTAG_ENVFILE_C", "process")
	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "process", os.Getenv("RYMTAG_ENVFILE_C"))
}
