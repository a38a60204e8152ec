package controller

import (
	"time"
)

// Level is the severity of an Event, matching the dashboard's toast styles.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// EventKind says what produced an Event.
type EventKind int

const (
	// EventWidget is a single widget refresh that failed.
	EventWidget EventKind = iota
	// EventRefreshAll summarizes a full refresh.
	EventRefreshAll
	// EventMetrics is a failed metrics poll tick.
	EventMetrics
	// EventLifecycle covers create/destroy and visibility changes.
	EventLifecycle
)

// Event is something the host application may want to surface.
type Event struct {
	Kind    EventKind
	Level   Level
	Widget  string // empty unless Kind is EventWidget
	Message string
	Err     error
	At      time.Time
}

// Reporter receives controller events. Report must not block; it is called
// from refresh and poll goroutines.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }
