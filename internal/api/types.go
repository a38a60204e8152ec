package api

import (
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ChartData is a chart-series payload: one label per point and one or more
// datasets aligned with the labels.
type ChartData struct {
	Labels   []string  `json:"labels" yaml:"labels"`
	Datasets []Dataset `json:"datasets" yaml:"datasets"`
}

// Dataset is one named series.
type Dataset struct {
	Label string    `json:"label,omitempty" yaml:"label,omitempty"`
	Data  []float64 `json:"data" yaml:"data"`
}

// Empty reports whether the payload has no points at all.
func (c ChartData) Empty() bool {
	if len(c.Labels) > 0 {
		return false
	}
	for _, ds := range c.Datasets {
		if len(ds.Data) > 0 {
			return false
		}
	}
	return true
}

// Total sums the first dataset. Doughnut charts use it for shares.
func (c ChartData) Total() float64 {
	if len(c.Datasets) == 0 {
		return 0
	}
	var sum float64
	for _, v := range c.Datasets[0].Data {
		sum += v
	}
	return sum
}

// MetricsSnapshot is one reading of the backend's system metrics.
// Each poll replaces the previous snapshot; nothing is accumulated.
type MetricsSnapshot struct {
	CPUUsage    float64   `json:"cpu_usage" yaml:"cpu_usage"`
	MemoryUsage float64   `json:"memory_usage" yaml:"memory_usage"`
	DiskUsage   float64   `json:"disk_usage" yaml:"disk_usage"`
	NetworkIO   float64   `json:"network_io" yaml:"network_io"` // bytes/sec
	FetchedAt   time.Time `json:"-" yaml:"fetched_at"`
}

// IsZero reports whether no snapshot has been fetched yet.
func (m MetricsSnapshot) IsZero() bool {
	return m.FetchedAt.IsZero()
}

// NetworkKBps returns network throughput in KB/s.
func (m MetricsSnapshot) NetworkKBps() float64 {
	return m.NetworkIO / 1024
}

// Timestamp parses the ISO-8601 strings the backend emits, with or without
// a zone offset.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}

	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
