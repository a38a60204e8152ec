package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rileyhilliard/pulse/internal/errors"
)

// ValidKinds are the chart kinds the terminal renderer knows how to draw.
var ValidKinds = map[string]bool{
	"line":     true,
	"area":     true,
	"doughnut": true,
	"radar":    true,
	"bar":      true,
}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but pulse only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest pulse release")
	}

	if err := validateAPI(cfg.API); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'api' section in your .pulse.yaml.")
	}

	if cfg.Poll.Interval < MinPollInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("poll.interval %s is too short", cfg.Poll.Interval),
			fmt.Sprintf("Minimum interval is %s to avoid overwhelming the backend", MinPollInterval))
	}

	if err := validateThresholds(cfg.Thresholds); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'thresholds' section in your .pulse.yaml.")
	}

	if cfg.Notifications.Duration < 0 {
		return errors.New(errors.ErrConfig,
			"notifications.duration can't be negative",
			"Try something like 3s")
	}

	if err := validateWidgets(cfg.Widgets); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'widgets' section in your .pulse.yaml.")
	}

	return nil
}

func validateAPI(api APIConfig) error {
	if strings.TrimSpace(api.BaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(api.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("api.base_url '%s' doesn't look like an http(s) URL", api.BaseURL)
	}
	if api.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", api.Timeout)
	}
	if strings.ContainsAny(api.SSH, " \t\n") {
		return fmt.Errorf("api.ssh '%s' can't contain whitespace", api.SSH)
	}
	return nil
}

func validateThresholds(t ThresholdConfig) error {
	if t.Medium < 0 || t.Medium > 100 {
		return fmt.Errorf("thresholds.medium must be between 0 and 100, got %v", t.Medium)
	}
	if t.High < 0 || t.High > 100 {
		return fmt.Errorf("thresholds.high must be between 0 and 100, got %v", t.High)
	}
	if t.Medium >= t.High {
		return fmt.Errorf("thresholds.medium (%v) must be below thresholds.high (%v)", t.Medium, t.High)
	}
	return nil
}

func validateWidgets(widgets []WidgetConfig) error {
	if len(widgets) == 0 {
		return fmt.Errorf("at least one widget is required")
	}

	seen := make(map[string]bool, len(widgets))
	for i, w := range widgets {
		name := strings.TrimSpace(w.Name)
		if name == "" {
			return fmt.Errorf("widgets[%d] has no name", i)
		}
		if seen[name] {
			return fmt.Errorf("widget name '%s' is used more than once", name)
		}
		seen[name] = true

		if !ValidKinds[w.Kind] {
			return fmt.Errorf("widget '%s' has unknown kind '%s' (use line, area, doughnut, radar, or bar)", name, w.Kind)
		}
		if strings.TrimSpace(w.Source) == "" {
			return fmt.Errorf("widget '%s' has no source", name)
		}
		if strings.ContainsAny(w.Source, "/?# ") {
			return fmt.Errorf("widget '%s' source '%s' must be a bare endpoint suffix", name, w.Source)
		}
		if w.Max < 0 {
			return fmt.Errorf("widget '%s' max can't be negative", name)
		}
	}
	return nil
}
