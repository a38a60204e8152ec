package monitor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/controller"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/refresh"
)

// Controller is what the dashboard drives. *controller.Controller
// satisfies it.
type Controller interface {
	Create(ctx context.Context) error
	Destroy()
	RefreshAll(ctx context.Context) refresh.Report
	RefreshOne(ctx context.Context, name string) (refresh.Outcome, error)
	SetPeriod(ctx context.Context, name, period string) (refresh.Outcome, error)
	HandleFocus(msg tea.Msg) bool
	Resize()
	Predict(ctx context.Context, req api.PredictionRequest) (api.PredictionResult, error)
}

// Board is where the dashboard reads chart and metrics state. *Canvas
// satisfies it.
type Board interface {
	Charts() []ChartView
	Metrics() api.MetricsSnapshot
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	ctx   context.Context
	ctrl  Controller
	board Board

	title      string
	thresholds config.ThresholdConfig
	toastTTL   time.Duration
	exportDir  string
	now        func() time.Time

	width    int
	height   int
	selected int
	periods  map[string]string
	created  bool
	loadErr  error
	quitting bool
	showHelp bool

	toasts    []toast
	nextToast int

	input      *PredictionInput
	form       *huh.Form
	predicting bool
	result     *api.PredictionResult

	spinner spinner.Model
	help    help.Model
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithContext sets the context passed to controller calls.
func WithContext(ctx context.Context) ModelOption {
	return func(m *Model) { m.ctx = ctx }
}

// WithExportDir sets where ctrl+e writes snapshots.
func WithExportDir(dir string) ModelOption {
	return func(m *Model) { m.exportDir = dir }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) { m.now = now }
}

// Messages produced by the model's own commands.
type (
	createdMsg        struct{ err error }
	refreshDoneMsg    struct{ report refresh.Report }
	refreshOneDoneMsg struct {
		name    string
		outcome refresh.Outcome
		err     error
	}
	periodDoneMsg struct {
		name    string
		period  string
		outcome refresh.Outcome
		err     error
	}
	predictionDoneMsg struct {
		result api.PredictionResult
		err    error
	}
	exportDoneMsg struct {
		path string
		err  error
	}
	clockMsg time.Time
)

// clockInterval refreshes relative timestamps like "updated 3 seconds ago".
const clockInterval = time.Second

// NewModel creates a dashboard model over ctrl, reading what to draw from
// board.
func NewModel(ctrl Controller, board Board, cfg *config.Config, opts ...ModelOption) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = TitleStyle

	m := Model{
		ctx:        context.Background(),
		ctrl:       ctrl,
		board:      board,
		title:      cfg.API.BaseURL,
		thresholds: cfg.Thresholds,
		toastTTL:   cfg.Notifications.Duration,
		exportDir:  ".",
		now:        time.Now,
		periods:    make(map[string]string),
		spinner:    sp,
		help:       help.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init creates the controller's widgets and starts the clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.createCmd(),
		m.clockCmd(),
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.predicting && !key.Matches(msg, keys.Quit) {
			return m, nil
		}
		_, cmd := m.HandleKeyMsg(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, m.resizeCmd()

	case tea.FocusMsg, tea.BlurMsg:
		return m, m.focusCmd(msg)

	case createdMsg:
		m.created = true
		m.loadErr = msg.err
		if msg.err != nil {
			return m, m.toast(controller.LevelError, errors.Summary(msg.err))
		}
		return m, nil

	case refreshDoneMsg:
		// Success and partial-failure toasts arrive as controller events.
		return m, nil

	case refreshOneDoneMsg:
		if msg.err != nil {
			return m, m.toast(controller.LevelError, errors.Summary(msg.err))
		}
		if msg.outcome.OK() {
			return m, m.toast(controller.LevelSuccess, fmt.Sprintf("%s refreshed", m.chartTitle(msg.name)))
		}
		return m, nil

	case periodDoneMsg:
		if msg.err != nil {
			return m, m.toast(controller.LevelError, errors.Summary(msg.err))
		}
		if !msg.outcome.OK() {
			return m, nil
		}
		if msg.period == "" {
			delete(m.periods, msg.name)
		} else {
			m.periods[msg.name] = msg.period
		}
		return m, m.toast(controller.LevelInfo,
			fmt.Sprintf("%s chart updated to %s view", m.chartTitle(msg.name), periodLabel(msg.period)))

	case predictionDoneMsg:
		m.predicting = false
		if msg.err != nil {
			return m, m.toast(controller.LevelError, "Prediction failed")
		}
		m.result = &msg.result
		return m, m.toast(controller.LevelSuccess, "Prediction completed successfully!")

	case exportDoneMsg:
		if msg.err != nil {
			return m, m.toast(controller.LevelError, errors.Summary(msg.err))
		}
		return m, m.toast(controller.LevelSuccess, "Exported snapshot to "+msg.path)

	case EventMsg:
		return m, m.toast(msg.Event.Level, msg.Event.Message)

	case toastExpiredMsg:
		m.dismissToast(msg.id)
		return m, nil

	case ChartUpdatedMsg, MetricsUpdatedMsg:
		m.clampSelection()
		return m, m.forwardToForm(msg)

	case clockMsg:
		return m, m.clockCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, m.forwardToForm(msg)
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

func (m Model) clockCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

func (m Model) createCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return createdMsg{err: ctrl.Create(ctx)}
	}
}

// Controller calls can block on backend I/O or controller locks, so they
// always run as commands and never inside Update.

func (m Model) resizeCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.Resize()
		return nil
	}
}

func (m Model) focusCmd(msg tea.Msg) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.HandleFocus(msg)
		return nil
	}
}

func (m Model) refreshAllCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return refreshDoneMsg{report: ctrl.RefreshAll(ctx)}
	}
}

func (m Model) refreshOneCmd(name string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		out, err := ctrl.RefreshOne(ctx, name)
		return refreshOneDoneMsg{name: name, outcome: out, err: err}
	}
}

func (m Model) setPeriodCmd(period string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		out, err := ctrl.SetPeriod(ctx, PeriodWidget, period)
		return periodDoneMsg{name: PeriodWidget, period: period, outcome: out, err: err}
	}
}

func (m Model) exportCmd() tea.Cmd {
	snap := NewSnapshot(m.board.Charts(), m.board.Metrics(), m.periods, m.now())
	path := filepath.Join(m.exportDir, ExportName(snap.ExportedAt))
	return func() tea.Msg {
		return exportDoneMsg{path: path, err: ExportFile(path, snap)}
	}
}

func (m Model) quitCmd() tea.Cmd {
	ctrl := m.ctrl
	return tea.Sequence(func() tea.Msg {
		ctrl.Destroy()
		return nil
	}, tea.Quit)
}

func (m *Model) openPredictForm() tea.Cmd {
	if m.predicting {
		return nil
	}
	m.result = nil
	m.input = &PredictionInput{}
	m.form = NewPredictionForm(m.input)
	return m.form.Init()
}

// updateForm routes a key to the open prediction form and submits it once
// the user completes it.
func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Close) {
		m.closeForm()
		return m, nil
	}

	fm, cmd := m.form.Update(msg)
	if f, ok := fm.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		req := m.input.Request()
		m.closeForm()
		return m, m.submitPrediction(req)
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	}
	return m, cmd
}

func (m *Model) closeForm() {
	m.form = nil
	m.input = nil
}

func (m Model) forwardToForm(msg tea.Msg) tea.Cmd {
	if m.form == nil {
		return nil
	}
	_, cmd := m.form.Update(msg)
	return cmd
}

func (m *Model) submitPrediction(req api.PredictionRequest) tea.Cmd {
	if err := req.Validate(); err != nil {
		return m.toast(controller.LevelWarning, errors.Summary(err))
	}
	m.predicting = true

	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		res, err := ctrl.Predict(ctx, req)
		return predictionDoneMsg{result: res, err: err}
	}
}

func (m *Model) moveSelection(delta int) {
	n := len(m.board.Charts())
	if n == 0 {
		m.selected = 0
		return
	}
	m.selected = ((m.selected+delta)%n + n) % n
}

func (m *Model) clampSelection() {
	n := len(m.board.Charts())
	if m.selected >= n {
		m.selected = max(n-1, 0)
	}
}

func (m Model) selectedName() string {
	charts := m.board.Charts()
	if m.selected < 0 || m.selected >= len(charts) {
		return ""
	}
	return charts[m.selected].Name
}

func (m Model) chartTitle(name string) string {
	for _, c := range m.board.Charts() {
		if c.Name == name && c.Options.Title != "" {
			return c.Options.Title
		}
	}
	return name
}

func periodLabel(p string) string {
	if p == "" {
		return "default"
	}
	return p
}
