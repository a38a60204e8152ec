package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/errors"
)

// Prober is the slice of the API client the endpoint checks call.
type Prober interface {
	FetchChart(ctx context.Context, source, period string) (api.ChartData, error)
	FetchMetrics(ctx context.Context) (api.MetricsSnapshot, error)
}

// MetricsEndpointCheck takes one live-metrics reading.
type MetricsEndpointCheck struct {
	Client  Prober
	BaseURL string
	Timeout time.Duration
}

func (c *MetricsEndpointCheck) Name() string     { return "metrics_endpoint" }
func (c *MetricsEndpointCheck) Category() string { return CategoryAPI }

func (c *MetricsEndpointCheck) Run(ctx context.Context) CheckResult {
	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	snap, err := c.Client.FetchMetrics(ctx)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Metrics endpoint at %s: %s", c.BaseURL, errors.Summary(err)),
			Suggestion: suggestionOf(err, "Is the backend running?"),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Metrics endpoint answered (CPU %.1f%%)", snap.CPUUsage),
	}
}

// ChartEndpointCheck fetches one widget's chart data.
type ChartEndpointCheck struct {
	Client  Prober
	Widget  config.WidgetConfig
	Timeout time.Duration
}

func (c *ChartEndpointCheck) Name() string     { return "chart_" + c.Widget.Name }
func (c *ChartEndpointCheck) Category() string { return CategoryAPI }

func (c *ChartEndpointCheck) Run(ctx context.Context) CheckResult {
	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	title := c.Widget.DisplayTitle()
	data, err := c.Client.FetchChart(ctx, c.Widget.Source, "")
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s chart: %s", title, errors.Summary(err)),
			Suggestion: suggestionOf(err, ""),
		}
	}

	if data.Empty() {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s chart returned no data", title),
			Suggestion: fmt.Sprintf("Check that %s%s serves data", api.ChartDataPath, c.Widget.Source),
		}
	}

	points := 0
	for _, ds := range data.Datasets {
		points += len(ds.Data)
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s chart: %s", title, english.Plural(points, "point", "")),
	}
}

// NewAPIChecks returns the API category checks for cfg's backend.
func NewAPIChecks(client Prober, cfg *config.Config) []Check {
	checks := []Check{&MetricsEndpointCheck{Client: client, BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}}
	for _, w := range cfg.Widgets {
		checks = append(checks, &ChartEndpointCheck{Client: client, Widget: w, Timeout: cfg.API.Timeout})
	}
	return checks
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
