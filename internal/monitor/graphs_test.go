package monitor

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartView(kind widget.Kind, labels []string, data []float64, opts widget.Options) ChartView {
	return ChartView{
		Name:    "test",
		Kind:    kind,
		Options: opts,
		Data: api.ChartData{
			Labels:   labels,
			Datasets: []api.Dataset{{Label: "series", Data: data}},
		},
	}
}

func TestResampleData(t *testing.T) {
	tests := []struct {
		name   string
		data   []float64
		target int
		want   []float64
	}{
		{"empty", nil, 4, nil},
		{"zero target", []float64{1}, 0, nil},
		{"same size", []float64{1, 2, 3}, 3, []float64{1, 2, 3}},
		{"single point repeats", []float64{7}, 3, []float64{7, 7, 7}},
		{"downsample keeps peaks", []float64{1, 9, 2, 3}, 2, []float64{9, 3}},
		{"upsample interpolates", []float64{0, 10}, 3, []float64{0, 5, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resampleData(tt.data, tt.target))
		})
	}
}

func TestValueRange(t *testing.T) {
	lo, hi := valueRange([]float64{20, 50}, widget.Options{})
	assert.Equal(t, 20.0, lo)
	assert.Equal(t, 50.0, hi)

	lo, hi = valueRange([]float64{20, 50}, widget.Options{BeginAtZero: true})
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 50.0, hi)

	_, hi = valueRange([]float64{20, 50}, widget.Options{Max: 100})
	assert.Equal(t, 100.0, hi)

	lo, hi = valueRange([]float64{5, 5}, widget.Options{})
	assert.Equal(t, 5.0, lo)
	assert.Equal(t, 6.0, hi, "flat data still gets a usable range")
}

func TestBrailleSeries(t *testing.T) {
	// Bottom-left dot, then a full right column joining up to the top.
	line := brailleSeries([]float64{0, 1}, 0, 1, 1, 1, false)
	require.Len(t, line, 1)
	assert.Equal(t, "⣸", line[0])

	filled := brailleSeries([]float64{1, 1}, 0, 1, 1, 1, true)
	assert.Equal(t, "⣿", filled[0])

	flat := brailleSeries([]float64{0, 0}, 0, 1, 1, 2, true)
	assert.Equal(t, []string{"⠀", "⣀"}, flat)
}

func TestRenderChart_Empty(t *testing.T) {
	lines := RenderChart(ChartView{Kind: widget.KindLine}, 40, 5)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "No data yet")
}

func TestRenderChart_Line(t *testing.T) {
	v := chartView(widget.KindLine, []string{"Jan", "Feb", "Mar"}, []float64{100, 1200, 800},
		widget.Options{Prefix: "$", BeginAtZero: true})

	lines := RenderChart(v, 40, 6)
	require.Len(t, lines, 6)

	assert.Contains(t, lines[0], "$1,200", "top axis label is the max")
	assert.Contains(t, lines[4], "$0", "bottom axis label starts at zero")
	assert.Contains(t, lines[5], "Jan")
	assert.Contains(t, lines[5], "Mar")
	for _, l := range lines {
		assert.LessOrEqual(t, lipgloss.Width(l), 40)
	}
}

func TestRenderChart_AreaFillsBelowLine(t *testing.T) {
	v := chartView(widget.KindArea, []string{"a", "b"}, []float64{10, 10},
		widget.Options{BeginAtZero: true, Fill: true})

	lines := RenderChart(v, 20, 3)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "⣿")
	assert.Contains(t, lines[1], "⣿")
}

func TestRenderChart_Doughnut(t *testing.T) {
	v := chartView(widget.KindDoughnut, []string{"Online", "Retail", "Wholesale"}, []float64{50, 30, 20},
		widget.Options{Legend: widget.LegendBottom})

	lines := RenderChart(v, 60, 10)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Online")
	assert.Contains(t, lines[0], "50.0%")
	assert.Contains(t, lines[1], "30.0%")
	assert.Contains(t, lines[2], "20.0%")
}

func TestRenderChart_BarsRespectHeight(t *testing.T) {
	v := chartView(widget.KindRadar, []string{"Speed", "Reliability", "Comfort", "Safety"},
		[]float64{80, 90, 70, 95}, widget.Options{BeginAtZero: true, Max: 100})

	lines := RenderChart(v, 50, 2)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Speed")
	assert.Contains(t, lines[0], "80")
	assert.Contains(t, lines[1], "Reliability")
}

func TestChartSummary(t *testing.T) {
	line := chartView(widget.KindLine, []string{"a", "b"}, []float64{5, 1500}, widget.Options{Prefix: "$"})
	assert.Equal(t, "$1,500", chartSummary(line))

	donut := chartView(widget.KindDoughnut, []string{"a", "b"}, []float64{40, 60}, widget.Options{})
	assert.Equal(t, "total 100", chartSummary(donut))

	bars := chartView(widget.KindBar, []string{"a", "b"}, []float64{40, 60}, widget.Options{})
	assert.Equal(t, "avg 50", chartSummary(bars))

	assert.Equal(t, "-", chartSummary(ChartView{}))
}
