package cli

import (
	"context"
	goerrors "errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pulse/internal/controller"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/monitor"
	"golang.org/x/term"
)

// dashboardCommand opens the interactive dashboard, or prints a one-shot
// refresh report when stdout isn't a terminal.
func dashboardCommand(ctx context.Context, out io.Writer) error {
	if machineMode || !term.IsTerminal(int(os.Stdout.Fd())) {
		return refreshCommand(ctx, out, nil, "")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	restore, err := redirectLogs(logFile)
	if err != nil {
		return err
	}
	defer restore()

	log := logger.NewEnvLogger("[pulse]")
	sess, err := openSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer sess.Close()

	canvas := monitor.NewCanvas()
	bridge := monitor.NewBridge()
	canvas.SetNotifier(bridge.Send)

	ctrl := controller.New(cfg, sess.client, canvas, canvas,
		controller.WithReporter(bridge),
		controller.WithLogger(log))
	defer ctrl.Destroy()

	model := monitor.NewModel(ctrl, canvas, cfg, monitor.WithContext(ctx))
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx))
	bridge.Attach(p)

	_, err = p.Run()
	if goerrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		// Interrupted by a signal; the deferred Destroy cleans up.
		return nil
	}
	return err
}

// redirectLogs points the standard logger at path, or discards output when
// path is empty, so log lines don't land on the alt screen.
func redirectLogs(path string) (func(), error) {
	if path == "" {
		return logger.RedirectOutput(io.Discard), nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't open log file "+path,
			"Check the --log-file path and its permissions")
	}
	restore := logger.RedirectOutput(f)
	return func() {
		restore()
		f.Close()
	}, nil
}
