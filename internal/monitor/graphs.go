package monitor

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/pulse/internal/util"
	"github.com/rileyhilliard/pulse/internal/widget"
)

// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 and sets one bit per dot.
const brailleBase = '⠀'

// brailleDots maps [row][col] inside a cell to its bit offset.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// RenderChart draws v into at most width columns and height rows.
func RenderChart(v ChartView, width, height int) []string {
	if width < 8 {
		width = 8
	}
	if height < 1 {
		height = 1
	}
	if v.Data.Empty() {
		return []string{MutedStyle.Render("No data yet")}
	}

	switch v.Kind {
	case widget.KindLine, widget.KindArea:
		return renderSeries(v, width, height)
	case widget.KindDoughnut:
		return renderShares(v, width, height)
	default:
		return renderBars(v, width, height)
	}
}

// valueRange picks the y-axis bounds for data under opts.
func valueRange(data []float64, opts widget.Options) (float64, float64) {
	if len(data) == 0 {
		return 0, 1
	}
	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if opts.BeginAtZero && lo > 0 {
		lo = 0
	}
	if opts.Max > 0 {
		hi = opts.Max
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

func normalize(v, lo, hi float64) float64 {
	n := (v - lo) / (hi - lo)
	return math.Max(0, math.Min(1, n))
}

// formatValue renders an axis or bar value with the widget's prefix.
func formatValue(v float64, prefix string) string {
	return prefix + humanize.CommafWithDigits(v, 1)
}

// renderSeries draws line and area charts as a braille plot with a y-axis
// gutter and the first and last labels underneath.
func renderSeries(v ChartView, width, height int) []string {
	var series []float64
	if len(v.Data.Datasets) > 0 {
		series = v.Data.Datasets[0].Data
	}
	lo, hi := valueRange(series, v.Options)

	top := formatValue(hi, v.Options.Prefix)
	bottom := formatValue(lo, v.Options.Prefix)
	gutter := max(lipgloss.Width(top), lipgloss.Width(bottom)) + 1

	plotRows := height - 1
	if plotRows < 1 {
		plotRows = 1
	}
	plotCols := width - gutter
	if plotCols < 2 {
		plotCols = 2
	}

	plot := brailleSeries(series, lo, hi, plotCols, plotRows, v.Kind == widget.KindArea)
	color := SeriesColor(0)
	if v.Options.Fill {
		color = ColorGraph
	}
	style := lipgloss.NewStyle().Foreground(color)
	axis := MutedStyle

	lines := make([]string, 0, plotRows+1)
	for i, row := range plot {
		label := ""
		switch i {
		case 0:
			label = top
		case len(plot) - 1:
			label = bottom
		}
		lines = append(lines, axis.Render(fmt.Sprintf("%*s ", gutter-1, label))+style.Render(row))
	}

	if height > 1 && len(v.Data.Labels) > 0 {
		first := v.Data.Labels[0]
		last := v.Data.Labels[len(v.Data.Labels)-1]
		gap := plotCols - len([]rune(first)) - len([]rune(last))
		footer := first
		if len(v.Data.Labels) > 1 && gap > 0 {
			footer = first + strings.Repeat(" ", gap) + last
		}
		lines = append(lines, strings.Repeat(" ", gutter)+axis.Render(util.Truncate(footer, plotCols)))
	}
	return lines
}

// brailleSeries plots data into a cols x rows grid of braille cells.
// Consecutive points are joined vertically; filled plots shade everything
// below the line.
func brailleSeries(data []float64, lo, hi float64, cols, rows int, filled bool) []string {
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(string(brailleBase), cols))
	}

	points := resampleData(data, cols*2)
	totalDots := rows * 4

	set := func(x, dot int) {
		row := rows - 1 - dot/4
		if row < 0 || row >= rows {
			return
		}
		grid[row][x/2] |= rune(1) << brailleDots[3-dot%4][x%2]
	}

	prev := -1
	for x, val := range points {
		y := int(math.Round(normalize(val, lo, hi) * float64(totalDots-1)))
		from, to := y, y
		switch {
		case filled:
			from = 0
		case prev >= 0:
			from, to = min(prev, y), max(prev, y)
		}
		for dot := from; dot <= to; dot++ {
			set(x, dot)
		}
		prev = y
	}

	out := make([]string, rows)
	for i, row := range grid {
		out[i] = string(row)
	}
	return out
}

// renderShares draws a doughnut as one share bar per slice.
func renderShares(v ChartView, width, height int) []string {
	if len(v.Data.Datasets) == 0 {
		return []string{MutedStyle.Render("No data yet")}
	}
	values := v.Data.Datasets[0].Data
	total := v.Data.Total()

	labelWidth := longestLabel(v.Data.Labels, len(values), width/3)
	barWidth := width - labelWidth - 2 - 9 - 1
	if barWidth < 4 {
		barWidth = 4
	}

	var lines []string
	for i, val := range values {
		if len(lines) >= height {
			break
		}
		share := 0.0
		if total > 0 {
			share = val / total
		}
		filled := int(math.Round(share * float64(barWidth)))
		swatch := lipgloss.NewStyle().Foreground(SeriesColor(i))

		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			swatch.Render("●"),
			LabelStyle.Render(util.Fit(labelAt(v.Data.Labels, i), labelWidth)),
			swatch.Render(strings.Repeat("█", filled))+MutedStyle.Render(strings.Repeat("░", barWidth-filled)),
			ValueStyle.Render(fmt.Sprintf("%5.1f%%", share*100)),
		))
	}
	return lines
}

// renderBars draws radar and bar charts as horizontal bars scaled to the
// axis maximum.
func renderBars(v ChartView, width, height int) []string {
	if len(v.Data.Datasets) == 0 {
		return []string{MutedStyle.Render("No data yet")}
	}
	values := v.Data.Datasets[0].Data
	_, hi := valueRange(values, widget.Options{BeginAtZero: true, Max: v.Options.Max})

	valueWidth := 0
	for _, val := range values {
		valueWidth = max(valueWidth, lipgloss.Width(formatValue(val, v.Options.Prefix)))
	}
	labelWidth := longestLabel(v.Data.Labels, len(values), width/3)
	barWidth := width - labelWidth - valueWidth - 2
	if barWidth < 4 {
		barWidth = 4
	}

	bar := lipgloss.NewStyle().Foreground(SeriesColor(0))
	var lines []string
	for i, val := range values {
		if len(lines) >= height {
			break
		}
		filled := int(math.Round(normalize(val, 0, hi) * float64(barWidth)))
		lines = append(lines, fmt.Sprintf("%s %s %s",
			LabelStyle.Render(util.Fit(labelAt(v.Data.Labels, i), labelWidth)),
			bar.Render(strings.Repeat("▇", filled))+MutedStyle.Render(strings.Repeat("·", barWidth-filled)),
			ValueStyle.Render(fmt.Sprintf("%*s", valueWidth, formatValue(val, v.Options.Prefix))),
		))
	}
	return lines
}

func labelAt(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return fmt.Sprintf("#%d", i+1)
}

func longestLabel(labels []string, n, limit int) int {
	w := 1
	for i := 0; i < n; i++ {
		w = max(w, len([]rune(labelAt(labels, i))))
	}
	if limit > 0 && w > limit {
		w = limit
	}
	return w
}

// resampleData fits data to targetSize points. Downsampling keeps the max
// of each bucket so spikes survive; upsampling interpolates linearly.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}
	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)
	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	if len(data) > targetSize {
		bucket := float64(len(data)) / float64(targetSize)
		for i := range result {
			start := int(float64(i) * bucket)
			end := min(int(float64(i+1)*bucket), len(data))
			if start >= end {
				start = end - 1
			}
			peak := data[start]
			for _, v := range data[start+1 : end] {
				peak = math.Max(peak, v)
			}
			result[i] = peak
		}
		return result
	}

	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := range result {
		pos := float64(i) * scale
		idx := int(pos)
		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
			continue
		}
		frac := pos - float64(idx)
		result[i] = data[idx]*(1-frac) + data[idx+1]*frac
	}
	return result
}

// chartSummary is the value shown in a chart panel's header.
func chartSummary(v ChartView) string {
	if v.Data.Empty() || len(v.Data.Datasets) == 0 {
		return "-"
	}
	data := v.Data.Datasets[0].Data
	if len(data) == 0 {
		return "-"
	}
	switch v.Kind {
	case widget.KindDoughnut:
		return "total " + formatValue(v.Data.Total(), v.Options.Prefix)
	case widget.KindLine, widget.KindArea:
		return formatValue(data[len(data)-1], v.Options.Prefix)
	default:
		var sum float64
		for _, d := range data {
			sum += d
		}
		return "avg " + formatValue(sum/float64(len(data)), v.Options.Prefix)
	}
}

