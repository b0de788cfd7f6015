package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUsesDefaults(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "syndicate", cfg.ServiceName)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "aggregate", cfg.TallyMode)
	assert.Equal(t, "checkpoint", cfg.RoyaltyMode)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syndicate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
serviceName: gallery
storageDriver: sqlite
votingPeriod: 10m
quorum: 40
admins: [" curator ", ""]
tallyMode: asset
`), 0o600))

	t.Setenv("SYNDICATE_QUORUM", "55")
	t.Setenv("SYNDICATE_HTTP_PORT", ":9090")
	t.Setenv("SYNDICATE_VOTING_DELAY", "5s")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gallery", cfg.ServiceName)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, 10*time.Minute, cfg.VotingPeriod)
	assert.Equal(t, 5*time.Second, cfg.VotingDelay)
	assert.Equal(t, uint64(55), cfg.Quorum)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, []string{"curator"}, cfg.Admins)
	assert.Equal(t, "asset", cfg.TallyMode)
}

func TestValidateRejectsBadSettings(t *testing.T) {
	cfg := Defaults()
	cfg.StorageDriver = DriverPostgres
	cfg.TallyMode = "quadratic"
	cfg.RoyaltyMode = "stream"
	cfg.VotingPeriod = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SYNDICATE_POSTGRES_DSN")
	assert.Contains(t, err.Error(), "quadratic")
	assert.Contains(t, err.Error(), "stream")
	assert.Contains(t, err.Error(), "voting period")
}

func TestLoadReportsUnreadableFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "read config file")
}

func TestLoadRejectsMalformedEnvironment(t *testing.T) {
	t.Setenv("SYNDICATE_QUORUM", "many")
	_, err := LoadFile("")
	require.ErrorContains(t, err, "process environment")
}
