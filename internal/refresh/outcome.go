package refresh

import (
	"fmt"
	"time"
)

// State is a widget's refresh state.
type State int

const (
	Idle State = iota
	InFlight
)

func (s State) String() string {
	if s == InFlight {
		return "in-flight"
	}
	return "idle"
}

// Status is the result of one widget refresh.
type Status int

const (
	StatusOK Status = iota
	StatusFailed
)

func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}
	return "failed"
}

// MarshalText lets reports serialize as {"sales": "ok"}.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "ok":
		*s = StatusOK
	case "failed":
		*s = StatusFailed
	default:
		return fmt.Errorf("unknown refresh status %q", b)
	}
	return nil
}

// Outcome describes one widget refresh.
type Outcome struct {
	Widget   string
	Status   Status
	Err      error
	Duration time.Duration
	Points   int

	// Shared is set when the result was delivered to more than one caller.
	Shared bool

	superseded bool
}

// OK reports whether the widget now shows fresh data.
func (o Outcome) OK() bool {
	return o.Status == StatusOK
}

// Report aggregates a RefreshAll. Outcomes are in registration order.
type Report struct {
	Outcomes []Outcome
}

// OK reports whether every widget refreshed.
func (r Report) OK() bool {
	for _, o := range r.Outcomes {
		if !o.OK() {
			return false
		}
	}
	return true
}

// Failed returns the failed outcomes.
func (r Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Succeeded returns the names of widgets that refreshed.
func (r Report) Succeeded() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.OK() {
			out = append(out, o.Widget)
		}
	}
	return out
}

// Statuses maps widget name to status.
func (r Report) Statuses() map[string]Status {
	m := make(map[string]Status, len(r.Outcomes))
	for _, o := range r.Outcomes {
		m[o.Widget] = o.Status
	}
	return m
}
