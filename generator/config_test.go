package generator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "LOG_LEVEL", "BIN_LOOKUP_URL", "BIN_LOOKUP_TIMEOUT",
		"BIN_LOOKUP_CONCURRENCY", "EXPIRY_TZ", "RANDOM_SEED", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":8181")
	t.Setenv("BIN_LOOKUP_URL", "http://lookup.internal/v1")
	t.Setenv("BIN_LOOKUP_TIMEOUT", "250ms")
	t.Setenv("BIN_LOOKUP_CONCURRENCY", "8")
	t.Setenv("RANDOM_SEED", "1234")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, ":8181", cfg.HTTPAddr)
	require.Equal(t, "http://lookup.internal/v1", cfg.LookupBaseURL)
	require.Equal(t, 250*time.Millisecond, cfg.LookupTimeout)
	require.Equal(t, 8, cfg.LookupConcurrency)
	require.Equal(t, int64(1234), cfg.RandomSeed)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")
	t.Setenv("EXPIRY_TZ", "")
	os.Unsetenv("EXPIRY_TZ")

	dir := t.TempDir()
	env := "LOG_LEVEL=debug\nEXPIRY_TZ=Australia/Sydney\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "Australia/Sydney", cfg.ExpiryTZ)
}

func TestLoadConfig_ConcurrencyFloor(t *testing.T) {
	t.Setenv("BIN_LOOKUP_CONCURRENCY", "-3")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 1, cfg.LookupConcurrency)
}

func TestLoadConfig_RejectsUnknownTimezone(t *testing.T) {
	t.Setenv("EXPIRY_TZ", "Mars/Olympus_Mons")

	_, err := LoadConfig(t.TempDir())
	require.ErrorContains(t, err, "EXPIRY_TZ")
}
