package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "github.com/reservo/reservo/internal/testing/guard"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("RESERVO_ENV_FILE", "")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, DriverPostgres, cfg.StorageDriver)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.True(t, cfg.NotifyEnabled)

	policy := cfg.BookingPolicy()
	require.Equal(t, 3, policy.Capacity)
	require.Equal(t, 10, policy.MaxPartySize)
	require.True(t, policy.RequireFuture)
	require.Equal(t, 200, policy.NotesMaxLength)
	require.Equal(t, time.UTC, policy.Location)
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	setRequired(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "reservo.env")
	require.NoError(t, os.WriteFile(path, []byte("SLOT_CAPACITY=5\nSTORAGE_DRIVER=memory\n"), 0o600))
	t.Setenv("RESERVO_ENV_FILE", path)
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Cleanup(func() { _ = os.Unsetenv("SLOT_CAPACITY") })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 5, cfg.SlotCapacity)
	// Variables already in the environment win over the file.
	require.Equal(t, DriverPostgres, cfg.StorageDriver)
}

func TestConfigValidate(t *testing.T) {
	base := func() Config {
		return Config{
			SessionSecret:  "s",
			CSRFSecret:     "c",
			StorageDriver:  DriverMemory,
			SlotCapacity:   3,
			MaxPartySize:   10,
			BcryptCost:     10,
			NotesMaxLength: 200,
			SlotTimezone:   "UTC",
		}
	}
	require.NoError(t, func() error { c := base(); return c.Validate() }())

	cases := map[string]func(*Config){
		"missing session secret": func(c *Config) { c.SessionSecret = "" },
		"missing csrf secret":    func(c *Config) { c.CSRFSecret = "" },
		"unknown driver":         func(c *Config) { c.StorageDriver = "sqlite" },
		"zero capacity":          func(c *Config) { c.SlotCapacity = 0 },
		"zero party size":        func(c *Config) { c.MaxPartySize = 0 },
		"unbounded notes":        func(c *Config) { c.NotesMaxLength = 0 },
		"negative notes bound":   func(c *Config) { c.NotesMaxLength = -1 },
		"bcrypt cost too high":   func(c *Config) { c.BcryptCost = 40 },
		"bad timezone":           func(c *Config) { c.SlotTimezone = "Mars/Olympus" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}

func TestIsProduction(t *testing.T) {
	var nilCfg *Config
	require.False(t, nilCfg.IsProduction())
	require.True(t, (&Config{AppEnv: "production"}).IsProduction())
}
