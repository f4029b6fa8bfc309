package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/boardnotify/pkg/config"
)

type testConfig struct {
	Name    string        `env:"TEST_CFG_NAME" envDefault:"default_value"`
	Count   int           `env:"TEST_CFG_COUNT" envDefault:"42"`
	Enabled bool          `env:"TEST_CFG_ENABLED" envDefault:"true"`
	Wait    time.Duration `env:"TEST_CFG_WAIT" envDefault:"30s"`
}

type prefixedConfig struct {
	MaxWait time.Duration `env:"MAX_WAIT" envDefault:"1m"`
}

type requiredConfig struct {
	Required string `env:"TEST_CFG_REQUIRED,required"`
}

func TestLoad(t *testing.T) {
	t.Run("reads environment variables", func(t *testing.T) {
		t.Setenv("TEST_CFG_NAME", "value")
		t.Setenv("TEST_CFG_COUNT", "100")
		t.Setenv("TEST_CFG_ENABLED", "false")
		t.Setenv("TEST_CFG_WAIT", "5s")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "value", cfg.Name)
		assert.Equal(t, 100, cfg.Count)
		assert.False(t, cfg.Enabled)
		assert.Equal(t, 5*time.Second, cfg.Wait)
	})

	t.Run("applies defaults", func(t *testing.T) {
		os.Unsetenv("TEST_CFG_NAME")
		os.Unsetenv("TEST_CFG_COUNT")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "default_value", cfg.Name)
		assert.Equal(t, 42, cfg.Count)
		assert.Equal(t, 30*time.Second, cfg.Wait)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Setenv("NOTIFY_MAX_WAIT", "90s")

		var cfg prefixedConfig
		require.NoError(t, config.Load(&cfg, config.WithPrefix("NOTIFY_")))
		assert.Equal(t, 90*time.Second, cfg.MaxWait)
	})

	t.Run("missing required value", func(t *testing.T) {
		os.Unsetenv("TEST_CFG_REQUIRED")

		var cfg requiredConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("TEST_CFG_COUNT", "not-a-number")

		var cfg testConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		var cfg *testConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	os.Unsetenv("TEST_CFG_REQUIRED")

	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_CFG_FROM_FILE=from_file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TEST_CFG_FROM_FILE") })

	require.NoError(t, config.LoadFiles(path))
	assert.Equal(t, "from_file", os.Getenv("TEST_CFG_FROM_FILE"))

	err := config.LoadFiles(filepath.Join(dir, "missing.env"))
	assert.ErrorIs(t, err, config.ErrDotenv)
}
