package monitor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/errors"
	"gopkg.in/yaml.v3"
)

// Snapshot is what an export writes: every chart's data plus the latest
// metrics reading.
type Snapshot struct {
	ExportedAt time.Time            `yaml:"exported_at"`
	Charts     []ChartSnapshot      `yaml:"charts"`
	Metrics    *api.MetricsSnapshot `yaml:"metrics,omitempty"`
}

// ChartSnapshot is one exported chart.
type ChartSnapshot struct {
	Name      string        `yaml:"name"`
	Kind      string        `yaml:"kind"`
	Title     string        `yaml:"title,omitempty"`
	Period    string        `yaml:"period,omitempty"`
	UpdatedAt time.Time     `yaml:"updated_at"`
	Data      api.ChartData `yaml:"data"`
}

// NewSnapshot captures charts and metrics. periods maps widget names to the
// time window they were last fetched with.
func NewSnapshot(charts []ChartView, metrics api.MetricsSnapshot, periods map[string]string, now time.Time) Snapshot {
	s := Snapshot{
		ExportedAt: now,
		Charts:     make([]ChartSnapshot, 0, len(charts)),
	}
	for _, c := range charts {
		s.Charts = append(s.Charts, ChartSnapshot{
			Name:      c.Name,
			Kind:      string(c.Kind),
			Title:     c.Options.Title,
			Period:    periods[c.Name],
			UpdatedAt: c.UpdatedAt,
			Data:      c.Data,
		})
	}
	if !metrics.IsZero() {
		s.Metrics = &metrics
	}
	return s
}

// WriteSnapshot encodes s as YAML.
func WriteSnapshot(w io.Writer, s Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return errors.WrapWithCode(err, errors.ErrRender, "Couldn't encode export", "")
	}
	return enc.Close()
}

// ExportFile writes s to path, creating parent directories as needed.
func ExportFile(path string, s Snapshot) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapWithCode(err, errors.ErrRender,
				"Couldn't create export directory "+dir,
				"Check directory permissions")
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrRender,
			"Couldn't create export file "+path,
			"Check directory permissions")
	}
	if err := WriteSnapshot(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ExportName is the default file name for an export taken at t.
func ExportName(t time.Time) string {
	return fmt.Sprintf("pulse-export-%s.yaml", t.Format("20060102-150405"))
}
