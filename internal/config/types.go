package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .pulse.yaml configuration file.
type Config struct {
	Version       int                 `yaml:"version" mapstructure:"version"`
	API           APIConfig           `yaml:"api" mapstructure:"api"`
	Poll          PollConfig          `yaml:"poll" mapstructure:"poll"`
	Thresholds    ThresholdConfig     `yaml:"thresholds" mapstructure:"thresholds"`
	Notifications NotificationsConfig `yaml:"notifications" mapstructure:"notifications"`
	Widgets       []WidgetConfig      `yaml:"widgets" mapstructure:"widgets"`
}

// APIConfig points pulse at the metrics/prediction backend.
type APIConfig struct {
	// BaseURL is the scheme and host of the backend, e.g. http://localhost:5000.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds every single request (one chart fetch, one metrics poll).
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// SSH, when set, tunnels every API connection through this SSH host.
	// Can be an SSH config alias, hostname, or user@host:port.
	SSH string `yaml:"ssh" mapstructure:"ssh"`
}

// PollConfig controls the live metrics poll.
type PollConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ThresholdConfig holds the percent boundaries for the metric tiers.
// A value strictly above High is high, strictly above Medium is medium.
type ThresholdConfig struct {
	Medium float64 `yaml:"medium" mapstructure:"medium"`
	High   float64 `yaml:"high" mapstructure:"high"`
}

// NotificationsConfig controls dashboard toasts.
type NotificationsConfig struct {
	Duration time.Duration `yaml:"duration" mapstructure:"duration"`
}

// WidgetConfig declares one chart widget.
type WidgetConfig struct {
	// Name identifies the widget; must be unique.
	Name string `yaml:"name" mapstructure:"name"`

	// Kind is the chart type: line, area, doughnut, radar, or bar.
	Kind string `yaml:"kind" mapstructure:"kind"`

	// Source is the chart-data endpoint suffix (/api/chart-data/<source>).
	Source string `yaml:"source" mapstructure:"source"`

	// Title shown above the chart. Defaults to Name.
	Title string `yaml:"title" mapstructure:"title"`

	// Prefix is prepended to axis values, e.g. "$".
	Prefix string `yaml:"prefix" mapstructure:"prefix"`

	// Max pins the value axis maximum (radar charts use 100).
	Max float64 `yaml:"max" mapstructure:"max"`
}

// Default values.
const (
	DefaultBaseURL              = "http://localhost:5000"
	DefaultTimeout              = 10 * time.Second
	DefaultPollInterval         = 5 * time.Second
	DefaultMediumThreshold      = 60.0
	DefaultHighThreshold        = 80.0
	DefaultNotificationDuration = 3 * time.Second

	// MinPollInterval keeps a misconfigured interval from hammering the backend.
	MinPollInterval = 500 * time.Millisecond
)

// DefaultWidgets mirrors the four charts of the stock dashboard.
func DefaultWidgets() []WidgetConfig {
	return []WidgetConfig{
		{Name: "sales", Kind: "line", Source: "sales", Title: "Sales", Prefix: "$"},
		{Name: "userGrowth", Kind: "area", Source: "users", Title: "User Growth"},
		{Name: "revenue", Kind: "doughnut", Source: "revenue", Title: "Revenue"},
		{Name: "performance", Kind: "radar", Source: "performance", Title: "Performance", Max: 100},
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Poll: PollConfig{
			Interval: DefaultPollInterval,
		},
		Thresholds: ThresholdConfig{
			Medium: DefaultMediumThreshold,
			High:   DefaultHighThreshold,
		},
		Notifications: NotificationsConfig{
			Duration: DefaultNotificationDuration,
		},
		Widgets: DefaultWidgets(),
	}
}

// Widget returns the widget config with the given name.
func (c *Config) Widget(name string) (WidgetConfig, bool) {
	for _, w := range c.Widgets {
		if w.Name == name {
			return w, true
		}
	}
	return WidgetConfig{}, false
}

// DisplayTitle returns the title, falling back to the widget name.
func (w WidgetConfig) DisplayTitle() string {
	if w.Title != "" {
		return w.Title
	}
	return w.Name
}
