package wallpaper

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrNoDisplays is returned by Apply when the platform reports zero
	// active displays.
	ErrNoDisplays = errors.New("no active displays found")
)

// ApplyError reports a partially or fully failed multi-display apply.
// Displays that succeeded keep their new background; there is no rollback.
type ApplyError struct {
	// Failed and Total count displays, Failed >= 1.
	Failed int
	Total  int
	// First is the first per-display error encountered, in enumeration
	// order. It is the representative cause surfaced to callers.
	First error
	// All aggregates every per-display error for diagnostics.
	All *multierror.Error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("wallpaper apply failed on %d of %d displays: %v", e.Failed, e.Total, e.First)
}

// Unwrap exposes the representative cause.
func (e *ApplyError) Unwrap() error {
	return e.First
}
