package monitor

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/util"
)

// RenderMetrics draws the live metrics panel. Percentages are colored by
// tier; network throughput is shown in KB/s.
func RenderMetrics(s api.MetricsSnapshot, t config.ThresholdConfig, width int, now time.Time) string {
	if s.IsZero() {
		return Section("Live Metrics", "waiting", []string{MutedStyle.Render("No reading yet")}, width)
	}

	barWidth := width - 4 - 9 - 8
	if barWidth < 4 {
		barWidth = 4
	}

	row := func(label string, percent float64) string {
		return LabelStyle.Render(util.Fit(label, 9)) +
			ProgressBar(barWidth, percent, t) +
			MetricStyle(percent, t).Render(fmt.Sprintf(" %6.1f%%", percent))
	}

	lines := []string{
		row("CPU", s.CPUUsage),
		row("Memory", s.MemoryUsage),
		row("Disk", s.DiskUsage),
		LabelStyle.Render(util.Fit("Network", 9)) + ValueStyle.Render(FormatNetwork(s)),
	}
	return Section("Live Metrics", "updated "+humanize.RelTime(s.FetchedAt, now, "ago", "from now"), lines, width)
}

// FormatNetwork renders network throughput as KB/s with one decimal.
func FormatNetwork(s api.MetricsSnapshot) string {
	return fmt.Sprintf("%.1f KB/s", s.NetworkKBps())
}
