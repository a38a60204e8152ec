package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/ui"
	"gopkg.in/yaml.v3"
)

// ConfigResult is the --json payload of `pulse config`.
type ConfigResult struct {
	Path   string         `json:"path"`
	Config *config.Config `json:"config"`
}

// configCommand prints the resolved config, defaults and overrides applied.
func configCommand(out io.Writer) error {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	if baseURLFlag != "" {
		cfg.API.BaseURL = strings.TrimRight(baseURLFlag, "/")
	}
	validateErr := config.Validate(cfg)

	if machineMode {
		if validateErr != nil {
			return validateErr
		}
		return WriteJSONSuccess(out, ConfigResult{Path: path, Config: cfg})
	}

	source := "built-in defaults"
	if path != "" {
		source = path
	}
	fmt.Fprintln(out, ui.Muted("# loaded from "+source))

	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrRender, "Couldn't print config", "")
	}
	humanizeDurations(&doc)

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return errors.WrapWithCode(err, errors.ErrRender, "Couldn't print config", "")
	}
	if err := enc.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrRender, "Couldn't print config", "")
	}
	return validateErr
}

// durationKeys are the config keys holding a time.Duration.
var durationKeys = map[string]bool{"timeout": true, "interval": true, "duration": true}

// humanizeDurations rewrites the nanosecond integers yaml.v3 emits for
// durations as "5s" style strings, which the loader reads back.
func humanizeDurations(n *yaml.Node) {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if durationKeys[k.Value] && v.Kind == yaml.ScalarNode && v.ShortTag() == "!!int" {
				if ns, err := strconv.ParseInt(v.Value, 10, 64); err == nil {
					v.Value = time.Duration(ns).String()
					v.Tag = "!!str"
				}
			}
		}
	}
	for _, c := range n.Content {
		humanizeDurations(c)
	}
}
