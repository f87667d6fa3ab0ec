//go:build !windows

package control

import (
	"net"
	"os"
)

// createListener binds the unix domain socket for the control endpoint.
// A stale socket from a crashed daemon is removed first; a live daemon
// holding the path makes the bind fail, which doubles as the
// single-instance check.
func createListener() (net.Listener, error) {
	path := socketPath()
	if conn, err := net.Dial("unix", path); err != nil {
		// Nothing is listening; safe to clear a stale socket file.
		_ = os.Remove(path)
	} else {
		conn.Close()
	}
	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, err
	}
	_ = os.Chmod(path, 0o600)
	return l, nil
}

func dialEndpoint() (net.Conn, error) {
	return net.Dial("unix", socketPath())
}
