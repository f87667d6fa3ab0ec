package wallpaper

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"github.com/earthwall/earthwall/pkg/logger"
)

const (
	// DirName is the managed directory under the system temp dir.
	DirName = "LiveEarthWallpaper"

	filePrefix = "earth_wallpaper_"
	fileExt    = ".jpg"

	// persistQuality is the JPEG quality used when writing wallpapers to
	// disk; fetch quality is a separate, configurable knob.
	persistQuality = 90
)

// DefaultDir returns the managed wallpaper directory inside the system
// temp directory.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), DirName)
}

// Applicator writes a decoded composite to the managed directory and sets
// it as the background of every active display.
type Applicator struct {
	fs       afero.Fs
	dir      string
	displays Displays
	ui       *Runner
	log      logger.Logger
	now      func() time.Time
}

// NewApplicator builds an applicator. The runner must outlive the
// applicator; the caller owns both.
func NewApplicator(fs afero.Fs, dir string, displays Displays, ui *Runner, log logger.Logger) *Applicator {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir == "" {
		dir = DefaultDir()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Applicator{
		fs:       fs,
		dir:      dir,
		displays: displays,
		ui:       ui,
		log:      log,
		now:      time.Now,
	}
}

// Apply persists img and applies it to all displays. It returns the
// persisted file path on success. Per-display failures are aggregated
// into an *ApplyError; displays that succeeded keep the new image.
func (a *Applicator) Apply(ctx context.Context, img image.Image) (string, error) {
	file, err := a.persist(img)
	if err != nil {
		return "", err
	}

	displays, err := a.displays.List()
	if err != nil {
		return file, fmt.Errorf("enumerate displays: %w", err)
	}
	if len(displays) == 0 {
		return file, ErrNoDisplays
	}

	// Per-display mutations run on the locked display thread; order
	// across displays is not significant, but each failure is recorded
	// in enumeration order so First is deterministic.
	var merr *multierror.Error
	var first error
	for _, d := range displays {
		d := d
		err := a.ui.Do(ctx, func() error {
			return a.displays.SetBackground(d, file)
		})
		if err != nil {
			a.log.Error("set background failed for display %d (%s): %v", d.Index, d.Name, err)
			merr = multierror.Append(merr, fmt.Errorf("display %d: %w", d.Index, err))
			if first == nil {
				first = err
			}
			continue
		}
		a.log.Info("wallpaper set on display %d (%s)", d.Index, d.Name)
	}

	if first != nil {
		return file, &ApplyError{
			Failed: merr.Len(),
			Total:  len(displays),
			First:  first,
			All:    merr,
		}
	}
	return file, nil
}

// persist encodes img as JPEG and writes it to a uniquely named file in
// the managed directory. The file is synced before the path is returned,
// so the display API never observes a partial write.
func (a *Applicator) persist(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: persistQuality}); err != nil {
		return "", fmt.Errorf("encode wallpaper: %w", err)
	}

	if err := a.fs.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("create wallpaper directory: %w", err)
	}

	name := fmt.Sprintf("%s%d%s", filePrefix, a.now().Unix(), fileExt)
	path := filepath.Join(a.dir, name)

	f, err := a.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("create wallpaper file: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return "", fmt.Errorf("write wallpaper file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return "", fmt.Errorf("flush wallpaper file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close wallpaper file: %w", err)
	}
	return path, nil
}
