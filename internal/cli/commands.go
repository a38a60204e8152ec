package cli

import (
	"github.com/spf13/cobra"
)

var (
	fetchFlags   FetchFlags
	exportPath   string
	predictInput predictFlags
)

var refreshCmd = &cobra.Command{
	Use:   "refresh [widget...]",
	Short: "Fetch every chart once and report per widget",
	Long: `Fetch chart data for every configured widget, or only the ones named, and
print which succeeded. Failed widgets don't stop the others; the command exits
non-zero if any failed.

With --export the refreshed charts and a metrics reading are written to a YAML
snapshot.`,
	Example: `  pulse refresh
  pulse refresh sales revenue
  pulse refresh --export ./snapshot.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return refreshCommand(cmd.Context(), cmd.OutOrStdout(), args, exportPath)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Take one live-metrics reading",
	Long:  `Fetch CPU, memory, disk and network usage once and show each against the configured thresholds.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return metricsCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run an ML prediction",
	Long: `Send two feature values to the prediction endpoint and print the result.

Without flags pulse asks for the model and features in a form.`,
	Example: `  pulse predict
  pulse predict --model classification --feature1 0.4 --feature2 1.2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return predictCommand(cmd.Context(), cmd.OutOrStdout(), predictInput)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Long:  `Print the configuration pulse would run with: the file it found, defaults filled in, and environment and flag overrides applied.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configCommand(cmd.OutOrStdout())
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, tunnel and backend problems",
	Long: `Check that the config loads, that the SSH tunnel comes up when api.ssh is
set, and that the backend answers on the metrics endpoint and every widget's
chart endpoint.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate a shell completion script",
	Long: `Generate a completion script for your shell.

  bash:       source <(pulse completion bash)
  zsh:        pulse completion zsh > "${fpath[1]}/_pulse"
  fish:       pulse completion fish | source
  powershell: pulse completion powershell | Out-String | Invoke-Expression`,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(out, true)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		default:
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		}
	},
}

func init() {
	AddFetchFlags(refreshCmd, &fetchFlags)
	AddFetchFlags(metricsCmd, &fetchFlags)
	AddFetchFlags(predictCmd, &fetchFlags)
	AddFetchFlags(doctorCmd, &fetchFlags)

	refreshCmd.Flags().StringVar(&exportPath, "export", "", "write a YAML snapshot of the refreshed charts to FILE")
	refreshCmd.ValidArgsFunction = completeWidgetNames

	predictCmd.Flags().StringVar(&predictInput.Model, "model", "", "model type: regression, classification, or clustering")
	predictCmd.Flags().StringVar(&predictInput.Feature1, "feature1", "", "first feature value")
	predictCmd.Flags().StringVar(&predictInput.Feature2, "feature2", "", "second feature value")
	_ = predictCmd.RegisterFlagCompletionFunc("model", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"regression", "classification", "clustering"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(refreshCmd, metricsCmd, predictCmd, configCmd, doctorCmd, completionCmd, versionCmd)
}

// completeWidgetNames offers the configured widget names not already given.
func completeWidgetNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	given := make(map[string]bool, len(args))
	for _, a := range args {
		given[a] = true
	}
	var names []string
	for _, w := range cfg.Widgets {
		if !given[w.Name] {
			names = append(names, w.Name+"\t"+w.DisplayTitle())
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
