package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addGlobalFlags(cmd.Flags())
	addRunFlags(cmd.Flags())
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("RESOURCE_CHECK_INTERVAL", "")
	t.Setenv("ECS_CLUSTER", "")

	cfg, err := loadConfig(newTestCmd(t))
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.Cluster)
	assert.Equal(t, time.Minute, cfg.PollInterval())
	assert.True(t, cfg.FailFast)
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cluster: from-file\ninterval: 10\nmarkerLabel: FILE_LABEL\n"), 0o600))

	t.Setenv("ECS_CLUSTER", "from-env")
	t.Setenv("RESOURCE_CHECK_INTERVAL", "20")

	cfg, err := loadConfig(newTestCmd(t, "--config", path, "-c", "from-flag"))
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.Cluster)
	assert.Equal(t, 20, cfg.Interval)
	assert.Equal(t, "FILE_LABEL", cfg.MarkerLabel)
}

func TestLoadConfigRejectsBadVerbosity(t *testing.T) {
	_, err := loadConfig(newTestCmd(t, "-v", "loud"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestLoadConfigRejectsBadInterval(t *testing.T) {
	t.Setenv("RESOURCE_CHECK_INTERVAL", "sixty")

	_, err := loadConfig(newTestCmd(t))
	assert.Error(t, err)
}

func TestLoadConfigRunFlags(t *testing.T) {
	t.Setenv("RESOURCE_CHECK_INTERVAL", "")

	cfg, err := loadConfig(newTestCmd(t, "--interval", "5", "--fail-fast=false", "--dry-run", "--metrics-addr", ":9102"))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Interval)
	assert.False(t, cfg.FailFast)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, ":9102", cfg.MetricsAddr)
}
