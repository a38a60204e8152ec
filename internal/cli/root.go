package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile     string
	baseURLFlag string
	logFile     string
	noColor     bool
)

// rootCmd runs the dashboard when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Live terminal dashboard for your analytics backend",
	Long: `pulse draws the sales, user growth, revenue and performance charts from an
analytics backend in your terminal, keeps live system metrics updating, and
runs one-off ML predictions.

Run without a subcommand to open the dashboard. When stdout isn't a terminal
pulse prints a one-shot refresh report instead.

Configuration is read from --config, ./.pulse.yaml, or
~/.config/pulse/config.yaml, and any key can be overridden with a PULSE_*
environment variable (e.g. PULSE_API_BASE_URL).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./.pulse.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "backend URL, overrides api.base_url")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs here while the dashboard is open")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "machine-readable JSON output")
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		os.Exit(handleError(err))
	}
}

// handleError prints err the way the current output mode expects and
// returns the exit code.
func handleError(err error) int {
	if machineMode {
		_ = WriteJSONFromError(os.Stdout, err)
		return 1
	}

	if isUnknownCommandError(err) {
		fmt.Fprintln(os.Stderr, err)
		if name := extractUnknownCommand(err); name != "" {
			fmt.Fprintf(os.Stderr, "'%s' isn't a pulse command. Run 'pulse --help' to see what is.\n", name)
		}
		return 2
	}

	fmt.Fprintln(os.Stderr, err)
	return 1
}

// isUnknownCommandError reports whether cobra rejected the command line.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls the name out of cobra's
// `unknown command "foo" for "pulse"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
