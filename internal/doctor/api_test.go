package doctor

import (
	"context"
	"testing"
	"time"

	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProber struct {
	charts     map[string]api.ChartData
	chartErr   map[string]error
	metrics    api.MetricsSnapshot
	metricsErr error
}

func (f *fakeProber) FetchChart(ctx context.Context, source, period string) (api.ChartData, error) {
	if err := f.chartErr[source]; err != nil {
		return api.ChartData{}, err
	}
	return f.charts[source], nil
}

func (f *fakeProber) FetchMetrics(ctx context.Context) (api.MetricsSnapshot, error) {
	return f.metrics, f.metricsErr
}

func TestMetricsEndpointCheck(t *testing.T) {
	ctx := context.Background()

	ok := (&MetricsEndpointCheck{Client: &fakeProber{metrics: api.MetricsSnapshot{CPUUsage: 12.34}}, BaseURL: "http://x"}).Run(ctx)
	assert.Equal(t, StatusPass, ok.Status)
	assert.Contains(t, ok.Message, "CPU 12.3%")

	failed := (&MetricsEndpointCheck{
		Client:  &fakeProber{metricsErr: errors.New(errors.ErrFetch, "Backend returned 503", "Is the backend running?")},
		BaseURL: "http://x",
		Timeout: time.Second,
	}).Run(ctx)
	assert.Equal(t, StatusFail, failed.Status)
	assert.Equal(t, "Metrics endpoint at http://x: Backend returned 503", failed.Message)
	assert.Equal(t, "Is the backend running?", failed.Suggestion)
}

func TestChartEndpointCheck(t *testing.T) {
	ctx := context.Background()
	prober := &fakeProber{
		charts: map[string]api.ChartData{
			"sales": {Labels: []string{"Jan", "Feb"}, Datasets: []api.Dataset{{Data: []float64{1, 2}}}},
			"users": {},
		},
		chartErr: map[string]error{"revenue": errors.New(errors.ErrParse, "Chart payload isn't valid JSON", "")},
	}

	sales := (&ChartEndpointCheck{Client: prober, Widget: config.WidgetConfig{Name: "sales", Source: "sales", Title: "Sales"}}).Run(ctx)
	assert.Equal(t, StatusPass, sales.Status)
	assert.Equal(t, "Sales chart: 2 points", sales.Message)

	users := (&ChartEndpointCheck{Client: prober, Widget: config.WidgetConfig{Name: "userGrowth", Source: "users"}}).Run(ctx)
	assert.Equal(t, StatusWarn, users.Status)
	assert.Contains(t, users.Suggestion, "/api/chart-data/users")

	revenue := (&ChartEndpointCheck{Client: prober, Widget: config.WidgetConfig{Name: "revenue", Source: "revenue", Title: "Revenue"}}).Run(ctx)
	assert.Equal(t, StatusFail, revenue.Status)
	assert.Equal(t, "Revenue chart: Chart payload isn't valid JSON", revenue.Message)
	assert.Equal(t, "chart_revenue", (&ChartEndpointCheck{Widget: config.WidgetConfig{Name: "revenue"}}).Name())
}

func TestNewAPIChecks(t *testing.T) {
	cfg := config.DefaultConfig()
	checks := NewAPIChecks(&fakeProber{}, cfg)

	require.Len(t, checks, 1+len(cfg.Widgets))
	assert.Equal(t, "metrics_endpoint", checks[0].Name())
	assert.Equal(t, "chart_sales", checks[1].Name())
	for _, c := range checks {
		assert.Equal(t, CategoryAPI, c.Category())
	}
}
