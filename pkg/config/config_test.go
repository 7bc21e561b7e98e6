package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "default", cfg.Cluster)
	assert.Equal(t, 60, cfg.Interval)
	assert.Equal(t, time.Minute, cfg.PollInterval())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "ECS_DAEMONSET", cfg.MarkerLabel)
	assert.True(t, cfg.FailFast)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		EnvCluster:     "arn:aws:ecs:eu-west-1:123456789012:cluster/prod",
		EnvInterval:    "15",
		EnvLogLevel:    "debug",
		EnvLogJSON:     "true",
		EnvRegion:      "eu-west-1",
		EnvEndpointURL: "http://localhost:4566",
		EnvMaxAttempts: "3",
		EnvMarkerLabel: "example.com/daemonset",
		EnvMetricsAddr: ":9102",
	}))
	require.NoError(t, err)

	assert.Equal(t, "arn:aws:ecs:eu-west-1:123456789012:cluster/prod", cfg.Cluster)
	assert.Equal(t, 15*time.Second, cfg.PollInterval())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "http://localhost:4566", cfg.EndpointURL)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, "example.com/daemonset", cfg.MarkerLabel)
	assert.Equal(t, ":9102", cfg.MetricsAddr)
}

func TestApplyEnvInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "fractional interval", env: map[string]string{EnvInterval: "1.5"}},
		{name: "word interval", env: map[string]string{EnvInterval: "soon"}},
		{name: "bad json flag", env: map[string]string{EnvLogJSON: "maybe"}},
		{name: "bad attempts", env: map[string]string{EnvMaxAttempts: "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			assert.Error(t, cfg.ApplyEnv(envMap(tt.env)))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty cluster", mutate: func(c *Config) { c.Cluster = " " }},
		{name: "zero interval", mutate: func(c *Config) { c.Interval = 0 }},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "chatty" }},
		{name: "zero attempts", mutate: func(c *Config) { c.MaxAttempts = 0 }},
		{name: "empty marker", mutate: func(c *Config) { c.MarkerLabel = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cluster: staging
interval: 30
dryRun: true
`), 0o600))

	cfg := Default()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "staging", cfg.Cluster)
	assert.Equal(t, 30, cfg.Interval)
	assert.True(t, cfg.DryRun)
	// Untouched keys keep their defaults
	assert.Equal(t, "ECS_DAEMONSET", cfg.MarkerLabel)
	assert.True(t, cfg.FailFast)
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clustr: typo\n"), 0o600))

	cfg := Default()
	assert.Error(t, cfg.LoadFile(path))
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "nope.yaml")))
}
