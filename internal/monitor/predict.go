package monitor

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/util"
)

// PredictionInput holds the raw values typed into the prediction form.
type PredictionInput struct {
	ModelType string
	Feature1  string
	Feature2  string
}

// Request converts the input to an API request. Blank or non-numeric
// features become NaN so Validate rejects them.
func (in PredictionInput) Request() api.PredictionRequest {
	return api.PredictionRequest{
		ModelType: strings.TrimSpace(in.ModelType),
		Features: map[string]float64{
			"feature1": parseFeature(in.Feature1),
			"feature2": parseFeature(in.Feature2),
		},
	}
}

func parseFeature(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// NewPredictionForm builds the model-type and feature form bound to in.
func NewPredictionForm(in *PredictionInput) *huh.Form {
	if in.ModelType == "" {
		in.ModelType = api.ModelRegression
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Model type").
				Options(huh.NewOptions(api.ModelTypes...)...).
				Value(&in.ModelType),
			huh.NewInput().
				Title("Feature 1").
				Placeholder("e.g. 42.5").
				Value(&in.Feature1),
			huh.NewInput().
				Title("Feature 2").
				Placeholder("e.g. 3.1").
				Value(&in.Feature2),
		),
	).WithShowHelp(false)
}

var formBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorAccentDim).
	Padding(1, 2).
	Width(48)

// RenderPrediction draws a prediction result panel.
func RenderPrediction(r api.PredictionResult, width int) string {
	row := func(label, value string) string {
		return LabelStyle.Render(util.Fit(label, 12)) + ValueStyle.Render(value)
	}

	lines := []string{
		row("Result", r.Label()),
		row("Confidence", r.ConfidencePercent()),
		row("Model", r.ModelType),
	}
	if !r.Timestamp.IsZero() {
		lines = append(lines, row("Time", r.Timestamp.Format("2006-01-02 15:04:05")))
	}

	if imp := r.SortedImportance(); len(imp) > 0 {
		lines = append(lines, "", MutedStyle.Render("Feature importance"))
		barWidth := width - 4 - 12 - 8
		if barWidth < 4 {
			barWidth = 4
		}
		bar := lipgloss.NewStyle().Foreground(ColorAccentDim)
		for _, i := range imp {
			filled := int(math.Round(math.Max(0, math.Min(1, i.Weight)) * float64(barWidth)))
			lines = append(lines, LabelStyle.Render(util.Fit(i.Feature, 12))+
				bar.Render(strings.Repeat("█", filled))+
				MutedStyle.Render(strings.Repeat("░", barWidth-filled))+
				ValueStyle.Render(" "+i.Percent()))
		}
	}

	return Section("Prediction", r.ConfidencePercent(), lines, width)
}
