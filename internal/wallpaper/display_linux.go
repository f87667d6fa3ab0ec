//go:build linux

package wallpaper

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/earthwall/earthwall/pkg/logger"
)

// gnomeDisplays sets the desktop background via gsettings. GNOME applies
// one background across all outputs, so enumeration reports a single
// logical display.
type gnomeDisplays struct {
	log logger.Logger
}

// SystemDisplays returns the Linux (GNOME) display collaborator.
func SystemDisplays(log logger.Logger) Displays {
	return &gnomeDisplays{log: log}
}

func (g *gnomeDisplays) List() ([]Display, error) {
	if _, err := exec.LookPath("gsettings"); err != nil {
		return nil, fmt.Errorf("gsettings not available: %w", err)
	}
	return []Display{{ID: "gnome", Name: "desktop", Index: 1}}, nil
}

func (g *gnomeDisplays) SetBackground(_ Display, file string) error {
	uri := "file://" + file
	// picture-options "zoom" scales to fill and crops, matching the
	// scale-to-fill-with-clipping contract.
	settings := [][]string{
		{"org.gnome.desktop.background", "picture-uri", uri},
		{"org.gnome.desktop.background", "picture-uri-dark", uri},
		{"org.gnome.desktop.background", "picture-options", "zoom"},
	}
	for _, s := range settings {
		cmd := exec.Command("gsettings", "set", s[0], s[1], s[2])
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("gsettings set %s %s: %w (output: %s)",
				s[0], s[1], err, strings.TrimSpace(string(out)))
		}
	}
	return nil
}
