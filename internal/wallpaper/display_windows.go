//go:build windows

package wallpaper

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"golang.org/x/image/bmp"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/earthwall/earthwall/pkg/logger"
)

const (
	spiSetDeskWallpaper  = 0x0014
	spifUpdateINIFile    = 0x01
	spifSendWinIniChange = 0x02
)

var (
	user32                   = windows.NewLazySystemDLL("user32.dll")
	procSystemParametersInfo = user32.NewProc("SystemParametersInfoW")
)

// winDisplays sets the desktop wallpaper via SystemParametersInfoW, which
// applies one image across all monitors; enumeration reports a single
// virtual display.
type winDisplays struct {
	log logger.Logger
}

// SystemDisplays returns the Windows display collaborator.
func SystemDisplays(log logger.Logger) Displays {
	return &winDisplays{log: log}
}

func (w *winDisplays) List() ([]Display, error) {
	return []Display{{ID: "desktop", Name: "desktop", Index: 1}}, nil
}

func (w *winDisplays) SetBackground(_ Display, file string) error {
	// SPI historically wants a BMP; convert beside the JPEG.
	bmpPath, err := convertToBMP(file)
	if err != nil {
		return err
	}

	// WallpaperStyle 10 = fill (scale with cropping).
	if err := setWallpaperStyle("10"); err != nil {
		w.log.Warning("could not set wallpaper style: %v", err)
	}

	p, err := windows.UTF16PtrFromString(bmpPath)
	if err != nil {
		return err
	}
	ret, _, callErr := procSystemParametersInfo.Call(
		uintptr(spiSetDeskWallpaper),
		0,
		uintptr(unsafe.Pointer(p)),
		uintptr(spifUpdateINIFile|spifSendWinIniChange),
	)
	if ret == 0 {
		return fmt.Errorf("SystemParametersInfoW failed: %w", callErr)
	}
	return nil
}

func setWallpaperStyle(style string) error {
	k, err := registry.OpenKey(registry.CURRENT_USER, `Control Panel\Desktop`, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()
	if err := k.SetStringValue("WallpaperStyle", style); err != nil {
		return err
	}
	return k.SetStringValue("TileWallpaper", "0")
}

func convertToBMP(src string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open wallpaper: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode wallpaper: %w", err)
	}

	dst := strings.TrimSuffix(src, filepath.Ext(src)) + ".bmp"
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create bmp: %w", err)
	}
	if err := bmp.Encode(out, img); err != nil {
		out.Close()
		return "", fmt.Errorf("encode bmp: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dst, nil
}
