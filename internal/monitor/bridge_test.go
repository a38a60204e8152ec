package monitor

import (
	"testing"

	"github.com/rileyhilliard/pulse/internal/controller"
	"github.com/stretchr/testify/assert"
)

func TestBridge_DropsMessagesBeforeAttach(t *testing.T) {
	b := NewBridge()
	assert.NotPanics(t, func() {
		b.Send(ChartUpdatedMsg{Name: "sales"})
		b.Report(controller.Event{Message: "hello"})
	})
}

func TestBridge_ImplementsReporter(t *testing.T) {
	var _ controller.Reporter = NewBridge()
}

func TestCanvas_ImplementsControllerInterfaces(t *testing.T) {
	var _ controller.MetricsSink = NewCanvas()
}
