package cli

import (
	"context"
	"strings"

	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/tunnel"
)

// loadConfig finds, loads and validates the config, applying --base-url
// and --timeout.
func loadConfig() (*config.Config, error) {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if baseURLFlag != "" {
		cfg.API.BaseURL = strings.TrimRight(baseURLFlag, "/")
	}
	if err := fetchFlags.Apply(cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is an API client plus the SSH tunnel it dials through, if any.
type session struct {
	client *api.Client
	tunnel *tunnel.Tunnel
}

// openSession builds the API client for cfg, opening the SSH tunnel first
// when api.ssh is set.
func openSession(ctx context.Context, cfg *config.Config, log logger.Logger) (*session, error) {
	opts := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(log),
	}

	s := &session{}
	if cfg.API.SSH != "" {
		tun, err := tunnel.Open(ctx, cfg.API.SSH, cfg.API.Timeout, log)
		if err != nil {
			return nil, err
		}
		s.tunnel = tun
		opts = append(opts, api.WithTransport(tun.Transport()))
	}

	s.client = api.NewClient(cfg.API.BaseURL, opts...)
	return s, nil
}

// Close tears down the tunnel.
func (s *session) Close() error {
	if s.tunnel != nil {
		return s.tunnel.Close()
	}
	return nil
}
