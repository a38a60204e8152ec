package tunnel

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// settings holds resolved connection parameters for one SSH host.
type settings struct {
	alias        string
	hostname     string
	port         string
	user         string
	identityFile string

	// matchLine is the line of the first Match block in ~/.ssh/config, or 0.
	// Entries after it are invisible to the parser.
	matchLine int
	// fromConfig is true when any value came from ~/.ssh/config.
	fromConfig bool
}

func (s *settings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// resolve turns "alias", "host", "user@host" or "user@host:port" into
// connection settings, consulting the SSH config at configPath.
func resolve(host, configPath string) *settings {
	s := &settings{port: "22", user: currentUser()}

	if at := strings.Index(host, "@"); at != -1 {
		s.user = host[:at]
		host = host[at+1:]
	}
	if h, p, ok := splitPort(host); ok {
		host, s.port = h, p
	}
	s.alias = host
	s.hostname = host

	content, matchLine, err := readConfig(configPath)
	if err != nil {
		return s
	}
	s.matchLine = matchLine

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return s
	}

	if v, _ := cfg.Get(host, "HostName"); v != "" {
		s.hostname = v
		s.fromConfig = true
	}
	if v, _ := cfg.Get(host, "Port"); v != "" {
		s.port = v
		s.fromConfig = true
	}
	if v, _ := cfg.Get(host, "User"); v != "" {
		s.user = v
		s.fromConfig = true
	}
	if v, _ := cfg.Get(host, "IdentityFile"); v != "" {
		s.identityFile = expandHome(v)
		s.fromConfig = true
	}
	return s
}

// splitPort splits a trailing all-digit ":port" off host.
func splitPort(host string) (string, string, bool) {
	i := strings.LastIndex(host, ":")
	if i == -1 || i == len(host)-1 {
		return host, "", false
	}
	for _, c := range host[i+1:] {
		if c < '0' || c > '9' {
			return host, "", false
		}
	}
	return host[:i], host[i+1:], true
}

// readConfig returns the SSH config content up to the first Match directive,
// which ssh_config cannot parse, and the 1-indexed line it was found on.
func readConfig(path string) ([]byte, int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			return []byte(strings.Join(lines[:i], "\n")), i + 1, nil
		}
	}
	return content, 0, nil
}

func sshDir() string {
	return filepath.Join(homeDir(), ".ssh")
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "root"
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
