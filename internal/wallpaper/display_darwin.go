//go:build darwin

package wallpaper

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/earthwall/earthwall/pkg/logger"
)

// macDisplays drives the desktop picture of every macOS desktop through
// System Events. Each desktop maps to one Display so per-desktop failures
// can be surfaced individually.
type macDisplays struct {
	log logger.Logger
}

// SystemDisplays returns the macOS display collaborator.
func SystemDisplays(log logger.Logger) Displays {
	return &macDisplays{log: log}
}

func (m *macDisplays) List() ([]Display, error) {
	out, err := exec.Command("osascript", "-e",
		`tell application "System Events" to count of desktops`).Output()
	if err != nil {
		return nil, fmt.Errorf("count desktops: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return nil, fmt.Errorf("parse desktop count %q: %w", strings.TrimSpace(string(out)), err)
	}
	displays := make([]Display, 0, n)
	for i := 1; i <= n; i++ {
		displays = append(displays, Display{
			ID:    strconv.Itoa(i),
			Name:  fmt.Sprintf("desktop %d", i),
			Index: i,
		})
	}
	return displays, nil
}

func (m *macDisplays) SetBackground(d Display, file string) error {
	script := fmt.Sprintf(`tell application "System Events"
	set picture of desktop %s to "%s"
end tell`, d.ID, file)
	if out, err := exec.Command("osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("set desktop picture: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}
