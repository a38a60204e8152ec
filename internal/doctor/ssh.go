package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/tunnel"
)

// SSHKeyCheck verifies an SSH key exists for the tunnel to authenticate
// with when no agent is running.
type SSHKeyCheck struct {
	// Home overrides the home directory; tests point it at a temp dir.
	Home string
}

func (c *SSHKeyCheck) Name() string     { return "ssh_key" }
func (c *SSHKeyCheck) Category() string { return CategorySSH }

func (c *SSHKeyCheck) Run(ctx context.Context) CheckResult {
	home := c.Home
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return CheckResult{
				Name:       c.Name(),
				Status:     StatusFail,
				Message:    "Cannot determine home directory",
				Suggestion: "Check HOME environment variable",
			}
		}
	}

	for _, key := range []string{"id_ed25519", "id_ecdsa", "id_rsa"} {
		if _, err := os.Stat(filepath.Join(home, ".ssh", key)); err == nil {
			return CheckResult{
				Name:    c.Name(),
				Status:  StatusPass,
				Message: "SSH key found: ~/.ssh/" + key,
			}
		}
	}

	if os.Getenv("SSH_AUTH_SOCK") != "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No key file, but an SSH agent is running",
		}
	}

	return CheckResult{
		Name:       c.Name(),
		Status:     StatusWarn,
		Message:    "No SSH key or agent found",
		Suggestion: "Generate a key with: ssh-keygen -t ed25519",
	}
}

// OpenFunc opens a tunnel to host. Tests swap in a fake.
type OpenFunc func(ctx context.Context, host string, timeout time.Duration) (io.Closer, error)

// TunnelCheck opens and closes the configured SSH tunnel.
type TunnelCheck struct {
	Host    string
	Timeout time.Duration
	Open    OpenFunc
}

func (c *TunnelCheck) Name() string     { return "ssh_tunnel" }
func (c *TunnelCheck) Category() string { return CategorySSH }

func (c *TunnelCheck) Run(ctx context.Context) CheckResult {
	open := c.Open
	if open == nil {
		open = openTunnel
	}

	start := time.Now()
	t, err := open(ctx, c.Host, c.Timeout)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    errors.Summary(err),
			Suggestion: suggestionOf(err, fmt.Sprintf("Try: ssh %s exit", c.Host)),
		}
	}
	t.Close()

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Tunnel through %s is up (%s)", c.Host, time.Since(start).Round(time.Millisecond)),
	}
}

func openTunnel(ctx context.Context, host string, timeout time.Duration) (io.Closer, error) {
	return tunnel.Open(ctx, host, timeout, logger.Noop())
}

// NewSSHChecks returns the SSH category checks, or nil when no tunnel host
// is configured.
func NewSSHChecks(host string, timeout time.Duration) []Check {
	if host == "" {
		return nil
	}
	return []Check{
		&SSHKeyCheck{},
		&TunnelCheck{Host: host, Timeout: timeout},
	}
}
