package wallpaper

import (
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/earthwall/earthwall/pkg/logger"
)

// DefaultMaxAge is the retention window for persisted wallpaper files.
const DefaultMaxAge = 24 * time.Hour

// Reaper removes stale wallpaper files from the managed directory.
// Reaping is best-effort housekeeping: it never fails a refresh cycle.
type Reaper struct {
	fs  afero.Fs
	log logger.Logger
	now func() time.Time
}

// NewReaper builds a reaper over the given filesystem.
func NewReaper(fs afero.Fs, log logger.Logger) *Reaper {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Reaper{fs: fs, log: log, now: time.Now}
}

// Reap deletes wallpaper image files in dir older than maxAge. Individual delete
// errors are logged and do not abort the sweep; a listing failure aborts
// silently. Returns the number of files deleted.
func (r *Reaper) Reap(dir string, maxAge time.Duration) int {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return 0
	}

	cutoff := r.now().Add(-maxAge)
	var deleted int
	for _, e := range entries {
		// .bmp covers the converted copies the Windows setter leaves
		// beside each JPEG.
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (!strings.EqualFold(ext, fileExt) && !strings.EqualFold(ext, ".bmp")) {
			continue
		}
		if !e.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := r.fs.Remove(path); err != nil {
			r.log.Warning("could not delete stale wallpaper %s: %v", e.Name(), err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		r.log.Info("reaped %d stale wallpaper file(s) from %s", deleted, dir)
	}
	return deleted
}

// ReapAsync runs Reap on a detached goroutine with panic recovery.
// Callers are never blocked on housekeeping.
func (r *Reaper) ReapAsync(dir string, maxAge time.Duration) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("PANIC [reaper]: %v\n%s", rec, debug.Stack())
			}
		}()
		r.Reap(dir, maxAge)
	}()
}
