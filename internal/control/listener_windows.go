//go:build windows

package control

import (
	"net"
	"os"
	"time"

	"github.com/Microsoft/go-winio"
)

const pipePathEnv = "EARTHWALL_PIPE_PATH"

// pipeSecurityDescriptor restricts pipe access to SYSTEM, Administrators
// and the creating user.
const pipeSecurityDescriptor = "D:(A;;GA;;;SY)(A;;GA;;;BA)(A;;GA;;;CO)"

func pipePath() string {
	if path := os.Getenv(pipePathEnv); path != "" {
		return path
	}
	return `\\.\pipe\earthwall`
}

// createListener binds the named pipe for the control endpoint.
func createListener() (net.Listener, error) {
	return winio.ListenPipe(pipePath(), &winio.PipeConfig{
		SecurityDescriptor: pipeSecurityDescriptor,
	})
}

func dialEndpoint() (net.Conn, error) {
	timeout := 2 * time.Second
	return winio.DialPipe(pipePath(), &timeout)
}
