package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMetricsCommandJSON(t *testing.T) {
	srv := newBackend(t)
	withConfigFile(t, srv.URL)
	machineMode = true

	var buf bytes.Buffer
	require.NoError(t, metricsCommand(context.Background(), &buf))

	var env struct {
		Success bool          `json:"success"`
		Data    MetricsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, 45.2, env.Data.CPUUsage)
	assert.Equal(t, 2.0, env.Data.NetworkKBps)
	assert.Equal(t, "low", env.Data.Tiers.CPU)
	assert.Equal(t, "medium", env.Data.Tiers.Memory)
	assert.Equal(t, "high", env.Data.Tiers.Disk)
}

func TestRenderMetricsTable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := api.MetricsSnapshot{
		CPUUsage:    45.2,
		MemoryUsage: 71.5,
		DiskUsage:   88.1,
		NetworkIO:   2048,
		FetchedAt:   now.Add(-2 * time.Minute),
	}
	out := renderMetricsTable(snap, config.DefaultConfig().Thresholds, now)

	assert.Contains(t, out, "45.2%")
	assert.Contains(t, out, "88.1%")
	assert.Contains(t, out, "2.0 KB/s")
	assert.Contains(t, out, "2.0 kB/s")
	assert.Contains(t, out, "fetched 2 minutes ago")
}

func TestPredictCommandWithFlags(t *testing.T) {
	srv := newBackend(t)
	withConfigFile(t, srv.URL)

	var buf bytes.Buffer
	err := predictCommand(context.Background(), &buf, predictFlags{Model: "regression", Feature1: "1.5", Feature2: "2"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "42.50")
	assert.Contains(t, buf.String(), "87.0%")
	assert.Contains(t, buf.String(), "feature1")
}

func TestPredictCommandJSON(t *testing.T) {
	srv := newBackend(t)
	withConfigFile(t, srv.URL)
	machineMode = true

	var buf bytes.Buffer
	require.NoError(t, predictCommand(context.Background(), &buf, predictFlags{Model: "regression", Feature1: "1", Feature2: "2"}))

	var env struct {
		Data PredictionPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, "42.50", env.Data.Label)
	assert.Equal(t, 0.87, env.Data.Confidence)
	assert.Equal(t, 0.7, env.Data.FeatureImportance["feature1"])
}

func TestPredictCommandValidation(t *testing.T) {
	srv := newBackend(t)
	withConfigFile(t, srv.URL)

	err := predictCommand(context.Background(), &bytes.Buffer{}, predictFlags{Model: "regression", Feature1: "abc"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))

	machineMode = true
	err = predictCommand(context.Background(), &bytes.Buffer{}, predictFlags{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))
}

func TestConfigCommandYAML(t *testing.T) {
	path := withConfigFile(t, "http://analytics.local:5000")

	var buf bytes.Buffer
	require.NoError(t, configCommand(&buf))

	out := buf.String()
	assert.Contains(t, out, "# loaded from "+path)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &cfg))
	assert.Equal(t, "http://analytics.local:5000", cfg.API.BaseURL)
	assert.Len(t, cfg.Widgets, 4)
}

func TestConfigCommandBaseURLOverride(t *testing.T) {
	withConfigFile(t, "http://analytics.local:5000")
	baseURLFlag = "http://override:9000/"
	machineMode = true

	var buf bytes.Buffer
	require.NoError(t, configCommand(&buf))

	var env struct {
		Data struct {
			Path   string `json:"path"`
			Config struct {
				API struct {
					BaseURL string `json:"BaseURL"`
				} `json:"API"`
			} `json:"config"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, "http://override:9000", env.Data.Config.API.BaseURL)
}

func TestConfigCommandReportsInvalidConfig(t *testing.T) {
	withConfigFile(t, "ftp://nope")

	var buf bytes.Buffer
	err := configCommand(&buf)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, buf.String(), "ftp://nope", "config is still printed")
}

func TestConfigCommandPrintsReadableDurations(t *testing.T) {
	withConfigFile(t, "http://analytics.local:5000")

	var buf bytes.Buffer
	require.NoError(t, configCommand(&buf))
	assert.Contains(t, buf.String(), "timeout: 2s")
	assert.Contains(t, buf.String(), "interval: 5s")
}
