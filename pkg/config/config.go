// Package config holds the controller's control surface: cluster selection,
// poll interval, verbosity and the ECS client settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/ecs-daemonset/pkg/log"
	"github.com/cuemby/ecs-daemonset/pkg/types"
)

// Environment variables read by FromEnv
const (
	EnvCluster     = "ECS_CLUSTER"
	EnvInterval    = "RESOURCE_CHECK_INTERVAL"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogJSON     = "LOG_JSON"
	EnvRegion      = "AWS_REGION"
	EnvEndpointURL = "ECS_ENDPOINT_URL"
	EnvMaxAttempts = "ECS_MAX_ATTEMPTS"
	EnvMarkerLabel = "ECS_DAEMONSET_LABEL"
	EnvMetricsAddr = "METRICS_ADDR"
)

// Config is the full controller configuration
type Config struct {
	Cluster     string `yaml:"cluster"`
	Interval    int    `yaml:"interval"` // Whole seconds between cycles
	LogLevel    string `yaml:"logLevel"`
	LogJSON     bool   `yaml:"logJSON"`
	Region      string `yaml:"region"`
	EndpointURL string `yaml:"endpointURL"`
	MaxAttempts int    `yaml:"maxAttempts"`
	MarkerLabel string `yaml:"markerLabel"`
	FailFast    bool   `yaml:"failFast"`
	DryRun      bool   `yaml:"dryRun"`
	MetricsAddr string `yaml:"metricsAddr"`
}

// Default returns the configuration used when nothing else is set
func Default() Config {
	return Config{
		Cluster:     types.DefaultCluster,
		Interval:    60,
		LogLevel:    string(log.InfoLevel),
		MaxAttempts: 5,
		MarkerLabel: types.DefaultMarkerLabel,
		FailFast:    true,
	}
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the file
// keep their current value.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays the environment onto c, using getenv to read variables
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvCluster); v != "" {
		c.Cluster = v
	}
	if v := getenv(EnvInterval); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be a whole number of seconds, got %q", EnvInterval, v)
		}
		c.Interval = n
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvLogJSON); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s must be a boolean, got %q", EnvLogJSON, v)
		}
		c.LogJSON = b
	}
	if v := getenv(EnvRegion); v != "" {
		c.Region = v
	}
	if v := getenv(EnvEndpointURL); v != "" {
		c.EndpointURL = v
	}
	if v := getenv(EnvMaxAttempts); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", EnvMaxAttempts, v)
		}
		c.MaxAttempts = n
	}
	if v := getenv(EnvMarkerLabel); v != "" {
		c.MarkerLabel = v
	}
	if v := getenv(EnvMetricsAddr); v != "" {
		c.MetricsAddr = v
	}
	return nil
}

// Validate checks the configuration before the loop starts
func (c Config) Validate() error {
	if strings.TrimSpace(c.Cluster) == "" {
		return fmt.Errorf("cluster is required")
	}
	if c.Interval < 1 {
		return fmt.Errorf("interval must be at least 1 second, got %d", c.Interval)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.MarkerLabel == "" {
		return fmt.Errorf("marker label is required")
	}
	return nil
}

// PollInterval returns the interval as a duration
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}
