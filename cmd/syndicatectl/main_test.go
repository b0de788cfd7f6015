package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	ledgercommands "syndicate/contexts/collective-ownership/fraction-ledger/application/commands"
	"syndicate/internal/app/bootstrap"
	"syndicate/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dataDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "syndicate.yaml")
	body := "storageDriver: sqlite\n" +
		"sqlitePath: " + dataDir + "\n" +
		"admins: [admin]\n" +
		"metricsEnabled: false\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func seedLedger(t *testing.T, configFile string) {
	t.Helper()
	cfg, err := config.LoadFile(configFile)
	require.NoError(t, err)
	components, err := bootstrap.Build(cfg, nil)
	require.NoError(t, err)
	defer components.Close()

	_, err = components.Ledger.Ledger.CreateAsset(context.Background(), ledgercommands.CreateAssetCommand{
		AssetID:        "asset-a",
		InitialHolder:  "alice",
		TotalFractions: 50,
	})
	require.NoError(t, err)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAuditReportsBalancedAssets(t *testing.T) {
	configFile := writeConfig(t, t.TempDir())
	seedLedger(t, configFile)

	out, err := execute(t, "--config", configFile, "audit")
	require.NoError(t, err)
	assert.Contains(t, out, "ASSET")
	assert.Contains(t, out, "asset-a")
	assert.Contains(t, out, "true")
}

func TestPowerCommands(t *testing.T) {
	configFile := writeConfig(t, t.TempDir())
	seedLedger(t, configFile)

	out, err := execute(t, "--config", configFile, "power", "show", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "alice\t50")

	out, err = execute(t, "--config", configFile, "power", "recompute", "alice", "nobody")
	require.NoError(t, err)
	assert.Contains(t, out, "alice\tcached=50\trecomputed=50\tok")
	assert.Contains(t, out, "nobody\tcached=0\trecomputed=0\tok")
}

func TestEligibilityRequiresAdmin(t *testing.T) {
	configFile := writeConfig(t, t.TempDir())
	seedLedger(t, configFile)

	_, err := execute(t, "--config", configFile, "eligibility", "asset-a", "--as", "mallory")
	require.Error(t, err)

	out, err := execute(t, "--config", configFile, "eligibility", "asset-a", "--as", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "asset-a\teligible=true")

	out, err = execute(t, "--config", configFile, "eligibility", "asset-a", "--as", "admin", "--disable")
	require.NoError(t, err)
	assert.Contains(t, out, "eligible=false")
}

func TestRelayDrainsOutboxes(t *testing.T) {
	configFile := writeConfig(t, t.TempDir())
	seedLedger(t, configFile)

	out, err := execute(t, "--config", configFile, "relay")
	require.NoError(t, err)
	assert.Contains(t, out, "backlog remaining: false")
}

func TestMigrateSQLite(t *testing.T) {
	configFile := writeConfig(t, t.TempDir())

	out, err := execute(t, "--config", configFile, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite schema up to date")
}

func TestMemoryDriverIsRejected(t *testing.T) {
	t.Setenv(config.ConfigFileEnv, "")
	t.Setenv("SYNDICATE_STORAGE_DRIVER", "memory")

	_, err := execute(t, "audit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persistent storage driver")
}
