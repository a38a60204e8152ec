package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/controller"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/refresh"
	"github.com/rileyhilliard/pulse/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeController records what the dashboard asked for and draws the
// configured widgets onto a Canvas on Create.
type fakeController struct {
	mu      sync.Mutex
	canvas  *Canvas
	calls   []string
	periods []string
	predErr error
	oneErr  error
}

func (f *fakeController) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeController) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeController) Create(ctx context.Context) error {
	f.record("create")
	for _, w := range config.DefaultWidgets() {
		if _, err := f.canvas.Create(widget.Kind(w.Kind), w.Name, salesData(), widget.OptionsFor(w)); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeController) Destroy() { f.record("destroy") }

func (f *fakeController) RefreshAll(ctx context.Context) refresh.Report {
	f.record("refresh-all")
	return refresh.Report{}
}

func (f *fakeController) RefreshOne(ctx context.Context, name string) (refresh.Outcome, error) {
	f.record("refresh:" + name)
	if f.oneErr != nil {
		return refresh.Outcome{}, f.oneErr
	}
	return refresh.Outcome{Widget: name, Status: refresh.StatusOK}, nil
}

func (f *fakeController) SetPeriod(ctx context.Context, name, period string) (refresh.Outcome, error) {
	f.record("period:" + name + "=" + period)
	return refresh.Outcome{Widget: name, Status: refresh.StatusOK}, nil
}

func (f *fakeController) HandleFocus(msg tea.Msg) bool {
	f.record("focus")
	return true
}

func (f *fakeController) Resize() { f.record("resize") }

func (f *fakeController) Predict(ctx context.Context, req api.PredictionRequest) (api.PredictionResult, error) {
	f.record("predict:" + req.ModelType)
	if f.predErr != nil {
		return api.PredictionResult{}, f.predErr
	}
	v := 12.345
	return api.PredictionResult{Prediction: api.Prediction{Value: &v}, Confidence: 0.9, ModelType: req.ModelType}, nil
}

var fixedNow = time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)

func newTestModel(t *testing.T) (Model, *fakeController) {
	t.Helper()
	canvas := NewCanvas()
	ctrl := &fakeController{canvas: canvas}
	m := NewModel(ctrl, canvas, config.DefaultConfig(),
		WithClock(func() time.Time { return fixedNow }),
		WithExportDir(t.TempDir()))
	return m, ctrl
}

// created runs the create command and applies its result.
func created(t *testing.T, m Model) Model {
	t.Helper()
	return update(t, m, m.createCmd()())
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func toastMessages(m Model) []string {
	var out []string
	for _, t := range m.toasts {
		out = append(out, t.message)
	}
	return out
}

func TestNewModel(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Equal(t, config.DefaultBaseURL, m.title)
	assert.Equal(t, config.DefaultNotificationDuration, m.toastTTL)
	assert.Equal(t, 60.0, m.thresholds.Medium)
	assert.False(t, m.created)
	assert.NotNil(t, m.periods)
}

func TestModel_Create(t *testing.T) {
	m, ctrl := newTestModel(t)
	m = created(t, m)

	assert.True(t, m.created)
	assert.NoError(t, m.loadErr)
	assert.Equal(t, []string{"create"}, ctrl.called())
	assert.Len(t, m.board.Charts(), 4)
}

func TestModel_CreateFailureShowsToast(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, createdMsg{err: errors.New(errors.ErrRender, "Couldn't create widget 'sales'", "")})

	assert.True(t, m.created)
	assert.Equal(t, []string{"Couldn't create widget 'sales'"}, toastMessages(m))
	assert.Equal(t, controller.LevelError, m.toasts[0].level)
}

func TestModel_RefreshAll(t *testing.T) {
	m, ctrl := newTestModel(t)
	m = created(t, m)

	m = update(t, m, keyMsg("ctrl+r"))
	assert.Equal(t, []string{"Refreshing charts..."}, toastMessages(m))
	assert.Equal(t, controller.LevelInfo, m.toasts[0].level)

	msg := m.refreshAllCmd()()
	assert.IsType(t, refreshDoneMsg{}, msg)
	assert.Contains(t, ctrl.called(), "refresh-all")
}

func TestModel_RefreshSelected(t *testing.T) {
	m, ctrl := newTestModel(t)
	m = created(t, m)
	m = update(t, m, keyMsg("tab"))
	assert.Equal(t, "userGrowth", m.selectedName())

	m = update(t, m, m.refreshOneCmd(m.selectedName())())
	assert.Contains(t, ctrl.called(), "refresh:userGrowth")
	assert.Equal(t, []string{"User Growth refreshed"}, toastMessages(m))
}

func TestModel_RefreshSelectedError(t *testing.T) {
	m, ctrl := newTestModel(t)
	ctrl.oneErr = errors.NewNotFound("ghost")
	m = created(t, m)

	m = update(t, m, m.refreshOneCmd("ghost")())
	require.Len(t, m.toasts, 1)
	assert.Equal(t, controller.LevelError, m.toasts[0].level)
}

func TestModel_SelectionWraps(t *testing.T) {
	m, _ := newTestModel(t)
	m = created(t, m)

	m = update(t, m, keyMsg("shift+tab"))
	assert.Equal(t, "performance", m.selectedName())

	m = update(t, m, keyMsg("tab"))
	assert.Equal(t, "sales", m.selectedName())
}

func TestModel_SalesPeriod(t *testing.T) {
	m, ctrl := newTestModel(t)
	m = created(t, m)

	m = update(t, m, m.setPeriodCmd(nextPeriod(m.periods[PeriodWidget], 1))())
	assert.Contains(t, ctrl.called(), "period:sales=week")
	assert.Equal(t, "week", m.periods["sales"])
	assert.Equal(t, []string{"Sales chart updated to week view"}, toastMessages(m))

	m = update(t, m, periodDoneMsg{name: "sales", period: "", outcome: refresh.Outcome{Status: refresh.StatusOK}})
	assert.NotContains(t, m.periods, "sales")
	assert.Contains(t, toastMessages(m), "Sales chart updated to default view")
}

func TestModel_FailedPeriodKeepsOldPeriod(t *testing.T) {
	m, _ := newTestModel(t)
	m = created(t, m)
	m.periods["sales"] = "month"

	m = update(t, m, periodDoneMsg{name: "sales", period: "quarter", outcome: refresh.Outcome{Status: refresh.StatusFailed}})
	assert.Equal(t, "month", m.periods["sales"])
	assert.Empty(t, m.toasts)
}

func TestNextPeriod(t *testing.T) {
	assert.Equal(t, "week", nextPeriod("", 1))
	assert.Equal(t, "year", nextPeriod("", -1))
	assert.Equal(t, "", nextPeriod("year", 1))
	assert.Equal(t, "week", nextPeriod("bogus", 1))
}

func TestModel_EventsBecomeToasts(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, EventMsg{Event: controller.Event{Level: controller.LevelSuccess, Message: "Charts refreshed successfully!"}})
	m = update(t, m, EventMsg{Event: controller.Event{Level: controller.LevelError, Message: "Error updating real-time metrics: boom"}})

	require.Len(t, m.toasts, 2)
	assert.Equal(t, "✓", toastIcon(m.toasts[0].level))
	assert.Equal(t, "✗", toastIcon(m.toasts[1].level))

	m = update(t, m, toastExpiredMsg{id: m.toasts[0].id})
	assert.Equal(t, []string{"Error updating real-time metrics: boom"}, toastMessages(m))
}

func TestModel_ToastsAreCapped(t *testing.T) {
	m, _ := newTestModel(t)
	for i := 0; i < maxToasts+2; i++ {
		m = update(t, m, EventMsg{Event: controller.Event{Message: string(rune('a' + i))}})
	}

	assert.Len(t, m.toasts, maxToasts)
	assert.Equal(t, "c", m.toasts[0].message, "oldest toasts drop first")
}

func TestToastIcon(t *testing.T) {
	assert.Equal(t, "✓", toastIcon(controller.LevelSuccess))
	assert.Equal(t, "✗", toastIcon(controller.LevelError))
	assert.Equal(t, "⚠", toastIcon(controller.LevelWarning))
	assert.Equal(t, "ℹ", toastIcon(controller.LevelInfo))
}

func TestModel_PredictionValidation(t *testing.T) {
	m, ctrl := newTestModel(t)

	cmd := m.submitPrediction(PredictionInput{ModelType: "regression", Feature1: "1"}.Request())
	assert.NotNil(t, cmd, "toast expiry")
	assert.False(t, m.predicting)
	assert.Equal(t, []string{"Please fill in all feature values"}, toastMessages(m))
	assert.Equal(t, controller.LevelWarning, m.toasts[0].level)
	assert.NotContains(t, ctrl.called(), "predict:regression")
}

func TestModel_PredictionSuccess(t *testing.T) {
	m, ctrl := newTestModel(t)

	cmd := m.submitPrediction(PredictionInput{ModelType: "regression", Feature1: "1", Feature2: "2"}.Request())
	require.NotNil(t, cmd)
	assert.True(t, m.predicting)
	assert.Contains(t, m.View(), "Running prediction...")

	m = update(t, m, cmd())
	assert.Contains(t, ctrl.called(), "predict:regression")
	assert.False(t, m.predicting)
	require.NotNil(t, m.result)
	assert.Equal(t, "12.35", m.result.Label())
	assert.Equal(t, []string{"Prediction completed successfully!"}, toastMessages(m))
}

func TestModel_PredictionFailure(t *testing.T) {
	m, ctrl := newTestModel(t)
	ctrl.predErr = errors.New(errors.ErrFetch, "boom", "")

	cmd := m.submitPrediction(api.PredictionRequest{ModelType: "regression", Features: map[string]float64{"feature1": 1, "feature2": 2}})
	m = update(t, m, cmd())

	assert.Nil(t, m.result)
	assert.Equal(t, []string{"Prediction failed"}, toastMessages(m))
}

func TestModel_PredictFormOpensAndCloses(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, keyMsg("p"))
	require.NotNil(t, m.form)
	assert.Contains(t, m.View(), "Run a prediction")

	m = update(t, m, keyMsg("esc"))
	assert.Nil(t, m.form)
}

func TestModel_HelpToggle(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, keyMsg("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m = update(t, m, keyMsg("esc"))
	assert.False(t, m.showHelp)
}

func TestModel_Export(t *testing.T) {
	m, _ := newTestModel(t)
	m = created(t, m)

	msg := m.exportCmd()()
	done, ok := msg.(exportDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.FileExists(t, done.path)

	m = update(t, m, done)
	assert.Equal(t, []string{"Exported snapshot to " + done.path}, toastMessages(m))
}

func TestModel_WindowSizeResizesCharts(t *testing.T) {
	m, ctrl := newTestModel(t)

	next, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 2, m.columns())

	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"resize"}, ctrl.called())
}

func TestModel_FocusGoesToController(t *testing.T) {
	m, ctrl := newTestModel(t)

	_, cmd := m.Update(tea.BlurMsg{})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"focus"}, ctrl.called())
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Contains(t, m.View(), "Loading charts...")

	m = created(t, m)
	m.board.(*Canvas).ApplyMetrics(api.MetricsSnapshot{CPUUsage: 85, NetworkIO: 2048, FetchedAt: fixedNow})

	view := m.View()
	assert.Contains(t, view, "pulse")
	assert.Contains(t, view, "▸ Sales")
	assert.Contains(t, view, "User Growth")
	assert.Contains(t, view, "Revenue")
	assert.Contains(t, view, "Performance")
	assert.Contains(t, view, "Live Metrics")
	assert.Contains(t, view, "2.0 KB/s")
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)

	next, cmd := m.Update(keyMsg("q"))
	m = next.(Model)
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
}
