package monitor

import (
	"testing"
	"time"

	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/stretchr/testify/assert"
)

func TestRenderMetrics(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 30, 3, 0, time.UTC)
	snap := api.MetricsSnapshot{
		CPUUsage:    45.2,
		MemoryUsage: 85,
		DiskUsage:   61,
		NetworkIO:   12288,
		FetchedAt:   now.Add(-3 * time.Second),
	}

	out := RenderMetrics(snap, defaultThresholds, 60, now)

	assert.Contains(t, out, "Live Metrics")
	assert.Contains(t, out, "updated 3 seconds ago")
	assert.Contains(t, out, "45.2%")
	assert.Contains(t, out, "85.0%")
	assert.Contains(t, out, "12.0 KB/s")
}

func TestRenderMetrics_Waiting(t *testing.T) {
	out := RenderMetrics(api.MetricsSnapshot{}, defaultThresholds, 60, time.Now())
	assert.Contains(t, out, "No reading yet")
}

func TestFormatNetwork(t *testing.T) {
	assert.Equal(t, "1.5 KB/s", FormatNetwork(api.MetricsSnapshot{NetworkIO: 1536}))
	assert.Equal(t, "0.0 KB/s", FormatNetwork(api.MetricsSnapshot{}))
}
