package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pulse/internal/doctor"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/ui"
)

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand runs the diagnostics and prints the report. Backend checks
// only run once the config loads and the tunnel, if any, comes up.
func doctorCommand(ctx context.Context, out io.Writer) error {
	checks := doctor.NewConfigChecks(cfgFile)
	results := doctor.RunAll(ctx, checks)

	cfg, cfgErr := loadConfig()
	if cfgErr == nil {
		sshChecks := doctor.NewSSHChecks(cfg.API.SSH, cfg.API.Timeout)
		sshResults := doctor.RunAll(ctx, sshChecks)
		checks = append(checks, sshChecks...)
		results = append(results, sshResults...)

		if !doctor.HasFailures(sshResults) {
			sess, err := openSession(ctx, cfg, logger.Noop())
			if err == nil {
				apiChecks := doctor.NewAPIChecks(sess.client, cfg)
				checks = append(checks, apiChecks...)
				results = append(results, doctor.RunAllParallel(ctx, apiChecks)...)
				sess.Close()
			}
		}
	}

	if machineMode {
		if err := WriteJSONSuccess(out, doctorOutput(checks, results)); err != nil {
			return err
		}
	} else {
		renderDoctorText(out, checks, results)
	}

	if doctor.HasFailures(results) {
		return errors.New(errors.ErrValidation, doctor.Summary(results), "Fix the failing checks above and run 'pulse doctor' again")
	}
	return nil
}

func doctorOutput(checks []doctor.Check, results []doctor.CheckResult) DoctorOutput {
	grouped := groupResults(checks, results)
	output := DoctorOutput{Categories: make([]CategoryOutput, 0, len(grouped))}
	for _, cat := range doctor.Categories {
		if rs, ok := grouped[cat]; ok {
			output.Categories = append(output.Categories, CategoryOutput{Name: cat, Results: rs})
		}
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		AllClear: !doctor.HasIssues(results),
	}
	return output
}

func groupResults(checks []doctor.Check, results []doctor.CheckResult) map[string][]doctor.CheckResult {
	grouped := make(map[string][]doctor.CheckResult)
	for i, check := range checks {
		grouped[check.Category()] = append(grouped[check.Category()], results[i])
	}
	return grouped
}

func renderDoctorText(out io.Writer, checks []doctor.Check, results []doctor.CheckResult) {
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("pulse diagnostic report"))
	fmt.Fprintln(out)

	grouped := groupResults(checks, results)
	for _, cat := range doctor.Categories {
		rs, ok := grouped[cat]
		if !ok {
			continue
		}
		fmt.Fprintln(out, headerStyle.Render(cat))
		for _, r := range rs {
			renderCheckResult(out, r)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, strings.Repeat("━", 60))
	symbol := lipgloss.NewStyle().Foreground(ui.ColorSuccess).Render(ui.SymbolSuccess)
	if doctor.HasIssues(results) {
		symbol = lipgloss.NewStyle().Foreground(ui.ColorError).Render(ui.SymbolFail)
	}
	fmt.Fprintf(out, "%s %s\n", symbol, doctor.Summary(results))
}

func renderCheckResult(out io.Writer, r doctor.CheckResult) {
	symbol, color := ui.SymbolComplete, ui.ColorSuccess
	switch r.Status {
	case doctor.StatusWarn:
		symbol, color = ui.SymbolWarning, ui.ColorWarning
	case doctor.StatusFail:
		symbol, color = ui.SymbolFail, ui.ColorError
	}

	fmt.Fprintf(out, "  %s %s\n", lipgloss.NewStyle().Foreground(color).Render(symbol), r.Message)
	if r.Suggestion != "" && r.Status != doctor.StatusPass {
		for _, line := range strings.Split(r.Suggestion, "\n") {
			fmt.Fprintf(out, "    %s\n", ui.Muted(line))
		}
	}
}
