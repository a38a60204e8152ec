package cli

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/util"
	"github.com/spf13/cobra"
)

// FetchFlags holds the flags shared by the commands that hit the backend.
type FetchFlags struct {
	Timeout string
}

// AddFetchFlags registers --timeout on a command.
func AddFetchFlags(cmd *cobra.Command, flags *FetchFlags) {
	cmd.Flags().StringVar(&flags.Timeout, "timeout", "", "per-request timeout (e.g., 5s, 2m)")
}

// Apply overrides cfg.API.Timeout when --timeout was given.
func (f FetchFlags) Apply(cfg *config.Config) error {
	d, err := ParseTimeout(f.Timeout)
	if err != nil {
		return err
	}
	if d > 0 {
		cfg.API.Timeout = d
	}
	return nil
}

// ParseTimeout parses a timeout string into a duration.
// Returns zero duration if the flag is empty.
func ParseTimeout(flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	duration, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid timeout", flag),
			"Try something like 5s, 2m, or 500ms.")
	}
	if duration <= 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("timeout must be positive, got %s", flag),
			"Try something like 5s, 2m, or 500ms.")
	}
	return duration, nil
}

// ValidateWidgetArgs checks every positional widget name against the config.
func ValidateWidgetArgs(cfg *config.Config, names []string) error {
	var unknown []string
	for _, name := range names {
		if _, ok := cfg.Widget(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	known := make([]string, 0, len(cfg.Widgets))
	for _, w := range cfg.Widgets {
		known = append(known, w.Name)
	}
	return errors.New(errors.ErrNotFound,
		fmt.Sprintf("Unknown widget: %s", util.JoinOrNone(unknown)),
		"Configured widgets: "+util.JoinOrNone(known))
}
