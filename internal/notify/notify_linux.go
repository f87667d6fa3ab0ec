//go:build linux

package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"
)

// DBusNotifier sends notifications over the session bus.
type DBusNotifier struct {
	conn *dbus.Conn
}

// System returns the platform notifier: D-Bus desktop notifications when
// a session bus is reachable, otherwise Nop.
func System() Notifier {
	conn, err := dbus.SessionBus()
	if err != nil {
		return Nop{}
	}
	return &DBusNotifier{conn: conn}
}

// Notify raises a transient desktop notification.
func (n *DBusNotifier) Notify(summary, body string) error {
	obj := n.conn.Object(notifyDest, notifyPath)
	// Args: app name, replaces-id, icon, summary, body, actions, hints,
	// expire timeout (ms).
	call := obj.Call(notifyMethod, 0,
		"earthwall", uint32(0), "", summary, body,
		[]string{}, map[string]dbus.Variant{}, int32(5000),
	)
	if call.Err != nil {
		return fmt.Errorf("dbus notify: %w", call.Err)
	}
	return nil
}
