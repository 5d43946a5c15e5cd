package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"raffle/internal/blockchain"
	"raffle/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raffle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultStoragePlugin, cfg.StoragePlugin)
	assert.Equal(t, time.Duration(0), cfg.TimeBuffer)
	assert.Equal(t, uint64(3480), cfg.Rent.NanosPerByteYear)

	programID, err := cfg.ProgramIdentity()
	require.NoError(t, err)
	assert.Equal(t, blockchain.DefaultProgramID, programID)

	_, enabled, err := cfg.TrackerIdentity()
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	operator, err := blockchain.NewIdentity()
	require.NoError(t, err)

	path := writeConfig(t, `
storagePlugin: badger
databasePath: /tmp/raffle-badger
timeBuffer: 30s
trackerOperator: "`+operator.ToRaw()+`"
rent:
  nanosPerByteYear: 10
  exemptionYears: 1
logger:
  level: debug
`)
	t.Setenv("RAFFLE_TIME_BUFFER", "1m")
	t.Setenv("RAFFLE_LOG_LEVEL", "warn")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "badger", cfg.StoragePlugin)
	assert.Equal(t, time.Minute, cfg.TimeBuffer)
	assert.Equal(t, uint64(10), cfg.Rent.NanosPerByteYear)
	assert.Equal(t, "warn", cfg.Logger.Level)

	tracked, enabled, err := cfg.TrackerIdentity()
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Equal(t, operator, tracked)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *config.Config){
		"plugin":      func(c *config.Config) { c.StoragePlugin = "postgres" },
		"beacon":      func(c *config.Config) { c.BeaconSource = "dice" },
		"static seed": func(c *config.Config) { c.BeaconSource = "static" },
		"program id":  func(c *config.Config) { c.ProgramID = "not-an-address" },
		"tracker":     func(c *config.Config) { c.TrackerOperator = "0:zz" },
		"time buffer": func(c *config.Config) { c.TimeBuffer = -time.Second },
		"interval":    func(c *config.Config) { c.TrackerInterval = 0 },
		"rent":        func(c *config.Config) { c.Rent.ExemptionYears = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
	require.NoError(t, config.Default().Validate())
}

func TestContext(t *testing.T) {
	assert.Nil(t, config.FromContext(context.Background()))

	cfg := config.Default()
	ctx := config.WithContext(context.Background(), cfg)
	assert.Same(t, cfg, config.FromContext(ctx))
}
