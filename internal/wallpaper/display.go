// Package wallpaper persists fetched composites to disk and applies them
// to every active display. It also houses the stale-file reaper that keeps
// the managed temp directory bounded.
package wallpaper

// Display identifies one active display as reported by the platform.
type Display struct {
	// ID is a platform-specific stable identifier.
	ID string
	// Name is a human-readable label for diagnostics.
	Name string
	// Index is the platform enumeration order, starting at 1.
	Index int
}

// Displays is the platform collaborator contract: enumerate active
// displays and set an image file as a display's desktop background with
// scale-to-fill semantics that allow cropping.
//
// SetBackground is only ever invoked from the applicator's display
// thread; implementations need not be safe for concurrent use.
type Displays interface {
	List() ([]Display, error)
	SetBackground(d Display, file string) error
}
