package tunnel

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
	"golang.org/x/crypto/ssh"
)

// Tunnel is an open SSH connection that HTTP requests are dialed through.
type Tunnel struct {
	Host    string // host or alias as configured
	Address string // resolved host:port

	client    *ssh.Client
	closeAuth func()
	once      sync.Once
	closeErr  error
}

// Open connects to host, resolving it against ~/.ssh/config.
func Open(ctx context.Context, host string, timeout time.Duration, log logger.Logger) (*Tunnel, error) {
	if log == nil {
		log = logger.Noop()
	}

	s := resolve(host, filepath.Join(sshDir(), "config"))
	if s.matchLine > 0 && !s.fromConfig {
		log.Warn("SSH host '%s' not found before the Match block at line %d of ~/.ssh/config", host, s.matchLine)
	}

	cfg, closeAuth, encrypted, err := clientConfig(s)
	if err != nil {
		return nil, err
	}

	address := s.address()
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		closeAuth()
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach tunnel host '%s' at %s", host, address),
			dialSuggestion(err))
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, cfg)
	if err != nil {
		conn.Close()
		closeAuth()
		var pErr *errors.Error
		if stderrors.As(err, &pErr) {
			return nil, pErr
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with '%s' didn't go through", host),
			handshakeSuggestion(err, encrypted))
	}

	log.Debug("tunnel open to %s (%s) as %s", host, address, s.user)
	return &Tunnel{
		Host:      host,
		Address:   address,
		client:    ssh.NewClient(sshConn, chans, reqs),
		closeAuth: closeAuth,
	}, nil
}

// DialContext opens a channel to addr on the far side of the tunnel.
func (t *Tunnel) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		c, err := t.client.Dial(network, addr)
		done <- result{c, err}
	}()

	select {
	case r := <-done:
		return r.conn, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.conn != nil {
				r.conn.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

// Transport returns an HTTP transport that dials through the tunnel.
func (t *Tunnel) Transport() *http.Transport {
	return &http.Transport{
		DialContext:         t.DialContext,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
}

// Close shuts the SSH connection. Safe to call more than once.
func (t *Tunnel) Close() error {
	t.once.Do(func() {
		if t.client != nil {
			t.closeErr = t.client.Close()
		}
		if t.closeAuth != nil {
			t.closeAuth()
		}
	})
	return t.closeErr
}
