package refresh

import (
	"image"
	"time"

	"github.com/earthwall/earthwall/pkg/logger"
)

type (
	// StatusHandlerFunc receives human-readable status updates as a cycle
	// progresses ("refreshing...", "wallpaper updated", error text).
	StatusHandlerFunc func(message string)
	// SuccessHandlerFunc receives the decoded composite and the success
	// timestamp after a cycle completes cleanly.
	SuccessHandlerFunc func(img image.Image, at time.Time)
	// ErrorHandlerFunc receives the terminal error of a failed cycle.
	ErrorHandlerFunc func(err error)
	// NextFireHandlerFunc receives the next scheduled fire time whenever
	// it is recomputed. A zero time means no timer is armed.
	NextFireHandlerFunc func(at time.Time)
	// CycleHandlerFunc is called once per finished cycle, success or
	// failure, in completion order. err is nil on success.
	CycleHandlerFunc func(started time.Time, err error)
)

// Handlers is the notification sink the scheduler publishes to. Any nil
// handler is replaced with a default; errors are always logged.
type Handlers struct {
	StatusHandler   StatusHandlerFunc
	SuccessHandler  SuccessHandlerFunc
	ErrorHandler    ErrorHandlerFunc
	NextFireHandler NextFireHandlerFunc
	CycleHandler    CycleHandlerFunc
}

func (h *Handlers) setDefault(l logger.Logger) {
	if h.StatusHandler == nil {
		h.StatusHandler = func(message string) {}
	}
	if h.SuccessHandler == nil {
		h.SuccessHandler = func(img image.Image, at time.Time) {}
	}
	if h.ErrorHandler == nil {
		h.ErrorHandler = func(err error) {
			l.Error("refresh cycle failed: %v", err)
		}
	} else {
		errHandler := h.ErrorHandler
		h.ErrorHandler = func(err error) {
			l.Error("refresh cycle failed: %v", err)
			errHandler(err)
		}
	}
	if h.NextFireHandler == nil {
		h.NextFireHandler = func(at time.Time) {}
	}
	if h.CycleHandler == nil {
		h.CycleHandler = func(started time.Time, err error) {}
	}
}
