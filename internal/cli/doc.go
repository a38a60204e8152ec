// Package cli implements the pulse command-line interface.
//
// The root command opens the dashboard. Subcommands cover the same backend
// calls without the full-screen UI:
//
//	pulse                     - Live dashboard (one-shot report when piped)
//	pulse refresh [widget...] - Fetch charts once and report per widget
//	pulse metrics             - Take one live-metrics reading
//	pulse predict             - Run an ML prediction
//	pulse config              - Print the resolved configuration
//	pulse doctor              - Diagnose config, tunnel and backend problems
//	pulse version             - Print build information
//
// # Sessions
//
// Every command that talks to the backend goes through openSession, which
// opens the SSH tunnel when api.ssh is set and hands back an api.Client
// dialing through it. Callers must Close the session.
//
// # Flag Handling
//
// Global flags (--config, --base-url, --json, --no-color, --log-file) are
// defined on the root command. FetchFlags adds --timeout to the commands
// that make requests.
//
// # Machine Output
//
// With --json, every command writes a JSONEnvelope to stdout, errors
// included, so scripts can branch on error.code.
package cli
