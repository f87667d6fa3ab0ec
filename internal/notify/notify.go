// Package notify raises desktop notifications for refresh outcomes.
// Notification delivery is best-effort: failures are logged, never
// propagated into the refresh cycle.
package notify

// Notifier sends a desktop notification.
type Notifier interface {
	Notify(summary, body string) error
}

// Nop discards notifications. Used when no desktop notification service
// is available.
type Nop struct{}

func (Nop) Notify(summary, body string) error { return nil }

var _ Notifier = Nop{}
