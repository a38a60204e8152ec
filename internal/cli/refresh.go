package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/controller"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/monitor"
	"github.com/rileyhilliard/pulse/internal/refresh"
	"github.com/rileyhilliard/pulse/internal/ui"
	"golang.org/x/term"
)

// RefreshResult is the --json payload of `pulse refresh`.
type RefreshResult struct {
	Widgets map[string]refresh.Status `json:"widgets"`
	Errors  map[string]string         `json:"errors,omitempty"`
	Export  string                    `json:"export,omitempty"`
}

// refreshCommand refreshes every widget, or just the named ones, and prints
// the per-widget report. A partial failure still exits non-zero.
func refreshCommand(ctx context.Context, out io.Writer, widgets []string, exportPath string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := ValidateWidgetArgs(cfg, widgets); err != nil {
		return err
	}

	log := logger.NewEnvLogger("[pulse]")
	sess, err := openSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer sess.Close()

	var spin *ui.Spinner
	if !machineMode && term.IsTerminal(int(os.Stderr.Fd())) {
		spin = ui.NewSpinner(os.Stderr, "Refreshing charts")
		spin.Start()
	}

	report, charts, err := runRefresh(ctx, cfg, sess.client, widgets, log)
	if spin != nil {
		switch {
		case err != nil:
			spin.Fail("Refresh failed")
		case report.OK():
			spin.Success("Charts refreshed successfully!")
		default:
			spin.Fail(fmt.Sprintf("Refreshed %d of %d widgets", len(report.Succeeded()), len(report.Outcomes)))
		}
	}
	if err != nil {
		return err
	}

	result := RefreshResult{Widgets: report.Statuses()}
	for _, o := range report.Failed() {
		if result.Errors == nil {
			result.Errors = make(map[string]string)
		}
		result.Errors[o.Widget] = errors.Summary(o.Err)
	}

	if exportPath != "" {
		metrics, merr := sess.client.FetchMetrics(ctx)
		if merr != nil {
			log.Warn("export without metrics: %v", merr)
		}
		s := monitor.NewSnapshot(charts, metrics, nil, time.Now())
		if err := monitor.ExportFile(exportPath, s); err != nil {
			return err
		}
		result.Export = exportPath
	}

	if machineMode {
		if err := WriteJSONSuccess(out, result); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, ui.RenderOutcomes(outcomeRows(report)))
		if result.Export != "" {
			fmt.Fprintf(out, "%s Exported snapshot to %s\n", ui.SymbolSuccess, result.Export)
		}
	}

	if !report.OK() {
		return errors.New(errors.ErrFetch,
			fmt.Sprintf("%d of %d widgets failed to refresh", len(report.Failed()), len(report.Outcomes)),
			"Previous data is kept; check the backend and try again")
	}
	return nil
}

// runRefresh creates the widgets headlessly and refreshes them. With names
// it refreshes only those widgets, in the order given. The returned charts
// are captured before the controller tears them down.
func runRefresh(ctx context.Context, cfg *config.Config, client controller.Client, names []string, log logger.Logger) (refresh.Report, []monitor.ChartView, error) {
	canvas := monitor.NewCanvas()
	ctrl := controller.New(cfg, client, canvas, canvas, controller.WithLogger(log))
	if err := ctrl.Create(ctx); err != nil {
		return refresh.Report{}, nil, err
	}
	defer ctrl.Destroy()

	var report refresh.Report
	if len(names) == 0 {
		report = ctrl.RefreshAll(ctx)
	} else {
		for _, name := range names {
			o, err := ctrl.RefreshOne(ctx, name)
			if err != nil {
				return refresh.Report{}, nil, err
			}
			report.Outcomes = append(report.Outcomes, o)
		}
	}
	return report, canvas.Charts(), nil
}

func outcomeRows(report refresh.Report) []ui.OutcomeRow {
	rows := make([]ui.OutcomeRow, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		row := ui.OutcomeRow{
			Widget:   o.Widget,
			OK:       o.OK(),
			Duration: ui.FormatDuration(o.Duration),
		}
		if o.OK() {
			row.Detail = english.Plural(o.Points, "point", "")
		} else {
			row.Detail = errors.Summary(o.Err)
		}
		rows = append(rows, row)
	}
	return rows
}
