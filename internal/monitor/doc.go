// Package monitor implements the terminal dashboard for pulse.
//
// Canvas is the chart renderer the controller draws through. It keeps each
// chart's latest data in memory and tells the Bubble Tea program when
// something changed; the Model redraws from it on every frame.
//
// # Architecture
//
// The package uses the Bubble Tea framework, which follows The Elm Architecture
// (Model-Update-View pattern):
//
//   - Model: Holds UI state (selection, toasts, prediction form, periods)
//   - Update: Processes messages (keystrokes, focus, chart and metric updates)
//   - View: Renders the current state to a string for display
//
// # Message Flow
//
// Chart fetches and metric polls happen on the controller's goroutines, never
// inside Update:
//
//  1. Init issues a command that runs Controller.Create
//  2. Canvas.Create/Update send ChartUpdatedMsg through the Bridge
//  3. Each poll tick lands in Canvas.ApplyMetrics and sends MetricsUpdatedMsg
//  4. Controller events arrive as EventMsg and become toasts
//
// # Keyboard Shortcuts
//
//	Ctrl+R      - Refresh all charts
//	r           - Refresh the selected chart
//	Tab         - Select next chart
//	[ / ]       - Cycle the sales period
//	Ctrl+E      - Export a YAML snapshot
//	p           - Run a prediction
//	?           - Toggle help overlay
//	q, Ctrl+C   - Quit
package monitor
