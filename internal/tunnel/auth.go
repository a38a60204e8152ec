package tunnel

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rileyhilliard/pulse/internal/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// StrictHostKeyChecking controls known_hosts verification. Disabling it is
// insecure and only meant for throwaway environments.
var StrictHostKeyChecking = true

// clientConfig builds the SSH client config for s. The returned closer
// releases the agent connection, if one was opened.
func clientConfig(s *settings) (*ssh.ClientConfig, func(), []string, error) {
	var (
		methods   []ssh.AuthMethod
		encrypted []string
		closeFn   = func() {}
	)

	if method, conn := agentAuth(); method != nil {
		methods = append(methods, method)
		closeFn = func() { conn.Close() }
	}

	keys := []string{s.identityFile}
	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keys = append(keys, filepath.Join(sshDir(), name))
	}
	seen := make(map[string]bool)
	for _, path := range keys {
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true

		method, err := keyAuth(path)
		if err != nil {
			if stderrors.Is(err, errEncryptedKey) {
				encrypted = append(encrypted, path)
			}
			continue
		}
		methods = append(methods, method)
	}

	if len(methods) == 0 {
		closeFn()
		msg := "No SSH auth methods available for the API tunnel"
		if len(encrypted) > 0 {
			msg = "Found SSH key(s) but they're encrypted: " + strings.Join(encrypted, ", ")
		}
		return nil, nil, encrypted, errors.New(errors.ErrSSH, msg, addKeysSuggestion(encrypted))
	}

	callback := ssh.InsecureIgnoreHostKey() //nolint:gosec // opt-out via StrictHostKeyChecking
	if StrictHostKeyChecking {
		var err error
		callback, err = hostKeyCallback(filepath.Join(sshDir(), "known_hosts"))
		if err != nil {
			closeFn()
			return nil, nil, encrypted, errors.WrapWithCode(err, errors.ErrSSH,
				"Couldn't load ~/.ssh/known_hosts",
				"Check the file is readable")
		}
	}

	return &ssh.ClientConfig{
		User:            s.user,
		Auth:            methods,
		HostKeyCallback: callback,
		Timeout:         10 * time.Second,
	}, closeFn, encrypted, nil
}

// agentAuth returns agent-backed auth when SSH_AUTH_SOCK points at an agent
// holding at least one key. An empty agent placed first makes servers give
// up before key files are tried.
func agentAuth() (ssh.AuthMethod, net.Conn) {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil, nil
	}
	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil, nil
	}
	client := agent.NewClient(conn)
	if signers, err := client.Signers(); err != nil || len(signers) == 0 {
		conn.Close()
		return nil, nil
	}
	return ssh.PublicKeysCallback(client.Signers), conn
}

var errEncryptedKey = stderrors.New("key is passphrase protected")

func keyAuth(path string) (ssh.AuthMethod, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if stderrors.As(err, &missing) || bytes.Contains(data, []byte("ENCRYPTED")) {
			return nil, fmt.Errorf("%s: %w", path, errEncryptedKey)
		}
		return nil, err
	}
	return ssh.PublicKeys(signer), nil
}

// hostKeyCallback verifies against known_hosts, creating an empty file if
// none exists so first-time users get a mismatch error instead of a crash.
func hostKeyCallback(path string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, nil, 0600); err != nil {
			return nil, err
		}
	}

	check, err := knownhosts.New(path)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := check(hostname, remote, key)
		var keyErr *knownhosts.KeyError
		if stderrors.As(err, &keyErr) {
			host := hostname
			if h, _, splitErr := net.SplitHostPort(hostname); splitErr == nil {
				host = h
			}
			if len(keyErr.Want) == 0 {
				return errors.WrapWithCode(err, errors.ErrSSH,
					fmt.Sprintf("'%s' isn't in known_hosts", host),
					fmt.Sprintf("Connect once by hand to trust it: ssh %s", host))
			}
			return errors.WrapWithCode(err, errors.ErrSSH,
				fmt.Sprintf("Host key for '%s' doesn't match known_hosts (server sent %s)", host, key.Type()),
				fmt.Sprintf("If the server was rebuilt, remove the old entry: ssh-keygen -R %s", host))
		}
		return err
	}, nil
}

func addKeysSuggestion(encrypted []string) string {
	if len(encrypted) == 0 {
		return "Check your keys are loaded: ssh-add -l"
	}
	var b strings.Builder
	b.WriteString("Add your key(s) to the agent:\n")
	for _, key := range encrypted {
		fmt.Fprintf(&b, "  ssh-add %s\n", key)
	}
	return strings.TrimRight(b.String(), "\n")
}

func dialSuggestion(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "Is sshd running on the tunnel host? Try: ssh <host>"
	case strings.Contains(msg, "no route to host"), strings.Contains(msg, "network is unreachable"):
		return "Can't route to the tunnel host. Check your network connection."
	case strings.Contains(msg, "timeout"):
		return "Connection timed out. The host might be offline or firewalled."
	default:
		return "Make sure the tunnel host is reachable, or clear api.ssh to connect directly"
	}
}

func handshakeSuggestion(err error, encrypted []string) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "unable to authenticate"), strings.Contains(msg, "no supported methods"):
		if len(encrypted) > 0 {
			return addKeysSuggestion(encrypted)
		}
		return "Auth failed. Check your keys are loaded: ssh-add -l"
	case strings.Contains(msg, "host key"):
		return "Host key issue. Try connecting manually first: ssh <host>"
	default:
		return "Something went wrong during SSH setup. Try: ssh <host>"
	}
}
