package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todos/internal/store"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todos.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// clearEnv unsets the variables Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "TODOS_DB", "TODOS_DRIVER"} {
		if old, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { os.Setenv(key, old) })
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "./todos.db", cfg.Database)
	assert.Equal(t, store.DriverMattn, cfg.Driver)
	assert.Equal(t, ":3001", cfg.Addr())
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "port: 8080\ndatabase: /tmp/other.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/tmp/other.db", cfg.Database)
	assert.Equal(t, store.DriverMattn, cfg.Driver, "unset fields keep their defaults")
}

func TestLoadEmptyFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "port: 8080\ndriver: sqlite3\n")
	t.Setenv("PORT", "9090")
	t.Setenv("TODOS_DRIVER", "sqlite")
	t.Setenv("TODOS_DB", ":memory:")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, store.DriverModernc, cfg.Driver)
	assert.Equal(t, store.MemoryPath, cfg.Database)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadUnknownField(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "port: 8080\nhost: example.com\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadInvalidEnvPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-port")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Port = 0 }, "invalid port 0"},
		{"port too large", func(c *Config) { c.Port = 70000 }, "invalid port 70000"},
		{"empty database", func(c *Config) { c.Database = "" }, "database path"},
		{"unknown driver", func(c *Config) { c.Driver = "postgres" }, `invalid driver "postgres"`},
		{"modernc", func(c *Config) { c.Driver = store.DriverModernc }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStoreConfig(t *testing.T) {
	cfg := Config{Port: 1, Database: "x.db", Driver: store.DriverModernc}
	assert.Equal(t, store.Config{Path: "x.db", Driver: store.DriverModernc}, cfg.StoreConfig())
}
