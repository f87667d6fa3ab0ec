//go:build !linux

package notify

// System returns the platform notifier. Desktop notification delivery is
// only wired on Linux; other platforms get Nop.
func System() Notifier {
	return Nop{}
}
