package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves the test into an empty directory so no stray .env is read.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("narocila", nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, "narocila.sqlite3", cfg.DSN)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.Seed)
}

func TestLoadPrecedence(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("NAROCILA_ADDR=:7000\nNAROCILA_LOG_FORMAT=json\n"), 0o644))
	// godotenv writes straight into the process environment.
	t.Cleanup(func() {
		os.Unsetenv("NAROCILA_ADDR")
		os.Unsetenv("NAROCILA_LOG_FORMAT")
	})
	t.Setenv("NAROCILA_DB", "from-env.sqlite3")
	t.Setenv("NAROCILA_SEED", "true")

	cfg, err := Load("narocila", []string{"-a", ":9090", "-log-level", "debug"})
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr, "flag wins over .env")
	assert.Equal(t, "json", cfg.LogFormat, ".env applies when nothing overrides it")
	assert.Equal(t, "from-env.sqlite3", cfg.DSN)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Seed)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	chdirTemp(t)

	tests := []struct {
		name string
		args []string
	}{
		{"driver", []string{"-driver", "oracle"}},
		{"level", []string{"-log-level", "loud"}},
		{"format", []string{"-log-format", "xml"}},
		{"empty dsn", []string{"-db", ""}},
		{"positional", []string{"extra"}},
		{"unknown flag", []string{"-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("narocila", tt.args)
			assert.Error(t, err)
		})
	}
}

func TestLoadBadSeedEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("NAROCILA_SEED", "maybe")

	_, err := Load("narocila", nil)
	assert.Error(t, err)
}

func TestLoadHelp(t *testing.T) {
	chdirTemp(t)

	_, err := Load("narocila", []string{"-h"})
	assert.ErrorIs(t, err, flag.ErrHelp)
}
