package control

import (
	"os"
	"path/filepath"
)

const socketPathEnv = "EARTHWALL_SOCKET_PATH"

func socketPath() string {
	if path := os.Getenv(socketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), "earthwall.sock")
}
