package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/monitor"
	"github.com/rileyhilliard/pulse/internal/ui"
)

// MetricsResult is the --json payload of `pulse metrics`.
type MetricsResult struct {
	CPUUsage    float64 `json:"cpu_usage"`
	MemoryUsage float64 `json:"memory_usage"`
	DiskUsage   float64 `json:"disk_usage"`
	NetworkKBps float64 `json:"network_kbps"`
	Tiers       struct {
		CPU    string `json:"cpu"`
		Memory string `json:"memory"`
		Disk   string `json:"disk"`
	} `json:"tiers"`
}

// metricsCommand takes a single live-metrics reading.
func metricsCommand(ctx context.Context, out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sess, err := openSession(ctx, cfg, logger.NewEnvLogger("[pulse]"))
	if err != nil {
		return err
	}
	defer sess.Close()

	snap, err := sess.client.FetchMetrics(ctx)
	if err != nil {
		return err
	}

	if machineMode {
		return WriteJSONSuccess(out, metricsResult(snap, cfg.Thresholds))
	}
	fmt.Fprint(out, renderMetricsTable(snap, cfg.Thresholds, time.Now()))
	return nil
}

func metricsResult(s api.MetricsSnapshot, t config.ThresholdConfig) MetricsResult {
	r := MetricsResult{
		CPUUsage:    s.CPUUsage,
		MemoryUsage: s.MemoryUsage,
		DiskUsage:   s.DiskUsage,
		NetworkKBps: s.NetworkKBps(),
	}
	r.Tiers.CPU = monitor.TierFor(s.CPUUsage, t).String()
	r.Tiers.Memory = monitor.TierFor(s.MemoryUsage, t).String()
	r.Tiers.Disk = monitor.TierFor(s.DiskUsage, t).String()
	return r
}

func renderMetricsTable(s api.MetricsSnapshot, t config.ThresholdConfig, now time.Time) string {
	percent := func(v float64) []string {
		return []string{fmt.Sprintf("%.1f%%", v), monitor.TierFor(v, t).String()}
	}
	rows := [][]string{
		append([]string{"CPU"}, percent(s.CPUUsage)...),
		append([]string{"Memory"}, percent(s.MemoryUsage)...),
		append([]string{"Disk"}, percent(s.DiskUsage)...),
		{"Network", monitor.FormatNetwork(s), humanize.Bytes(uint64(s.NetworkIO)) + "/s"},
	}
	table := ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "Metric", Width: 10},
		{Title: "Value", Width: 12},
		{Title: "Tier", Width: 10},
	}, rows)

	fetched := "just now"
	if !s.FetchedAt.IsZero() {
		fetched = humanize.RelTime(s.FetchedAt, now, "ago", "from now")
	}
	return table + "\n" + ui.Muted("fetched "+fetched) + "\n"
}
