// Package widget holds the registry of named chart widgets and the contract
// pulse expects from whatever draws them.
package widget

import (
	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/config"
)

// Kind is a chart type.
type Kind string

const (
	KindLine     Kind = "line"
	KindArea     Kind = "area"
	KindDoughnut Kind = "doughnut"
	KindRadar    Kind = "radar"
	KindBar      Kind = "bar"
)

// LegendPosition places a chart's legend.
type LegendPosition string

const (
	LegendNone   LegendPosition = ""
	LegendTop    LegendPosition = "top"
	LegendBottom LegendPosition = "bottom"
)

// Options are per-chart display settings.
type Options struct {
	Title       string
	Prefix      string // value prefix, e.g. "$"
	BeginAtZero bool
	Max         float64 // 0 means auto
	Fill        bool
	Legend      LegendPosition
}

// Handle is an opaque reference to a drawn chart. Only the Renderer that
// created it knows what it is. Handles must be comparable.
type Handle any

// Renderer draws charts. Implementations must be safe for concurrent use:
// refreshes apply from their own goroutines.
type Renderer interface {
	Create(kind Kind, container string, data api.ChartData, opts Options) (Handle, error)
	Update(h Handle, data api.ChartData) error
	Resize(h Handle)
	Destroy(h Handle)
}

// Entry is one registered widget.
type Entry struct {
	Name   string
	Kind   Kind
	Source string // chart-data endpoint suffix
	Handle Handle
}

// OptionsFor derives display options from a widget's config, filling in the
// settings each kind uses by default.
func OptionsFor(w config.WidgetConfig) Options {
	opts := Options{
		Title:  w.DisplayTitle(),
		Prefix: w.Prefix,
		Max:    w.Max,
	}
	switch Kind(w.Kind) {
	case KindLine, KindBar:
		opts.BeginAtZero = true
	case KindArea:
		opts.BeginAtZero = true
		opts.Fill = true
	case KindDoughnut:
		opts.Legend = LegendBottom
	case KindRadar:
		opts.BeginAtZero = true
		if opts.Max == 0 {
			opts.Max = 100
		}
	}
	return opts
}
