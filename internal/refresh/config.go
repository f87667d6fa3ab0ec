// Package refresh owns the wallpaper refresh orchestration: a repeating
// timer drives fetch+apply cycles, with at most one cycle in flight.
package refresh

import (
	"fmt"
	"strings"
	"time"

	"github.com/adhocore/gronx"

	"github.com/earthwall/earthwall/internal/composite"
)

const (
	// MinInterval is the floor on the refresh interval; the API enforces
	// one request per minute per token server-side.
	MinInterval = time.Minute

	// DefaultInterval is used when the configuration does not name one.
	DefaultInterval = 60 * time.Minute
)

// Config is the immutable per-cycle refresh configuration. The scheduler
// receives a new value on every Configure call; it never mutates one.
type Config struct {
	// Token authenticates against the composite API. Empty disables
	// refreshing entirely.
	Token string

	// Marine enables the ocean bathymetry overlay.
	Marine bool

	// TwilightAngle is the solar depression in degrees, 0-18.
	TwilightAngle float64

	// Size selects the composite resolution.
	Size composite.SizeClass

	// Quality is the JPEG quality requested from the server, 0-100.
	Quality int

	// Interval is the refresh period. Clamped to MinInterval.
	Interval time.Duration

	// Cron, when non-empty, overrides Interval with a cron expression
	// evaluated for the next fire time.
	Cron string
}

// HasToken reports whether the configuration can authenticate at all.
func (c Config) HasToken() bool {
	return strings.TrimSpace(c.Token) != ""
}

// Validate checks the domain constraints of the configuration.
func (c Config) Validate() error {
	if c.TwilightAngle < 0 || c.TwilightAngle > 18 {
		return fmt.Errorf("twilight angle %.1f out of range 0-18", c.TwilightAngle)
	}
	if !c.Size.Valid() {
		return fmt.Errorf("invalid size class %q", c.Size)
	}
	if c.Quality < 0 || c.Quality > 100 {
		return fmt.Errorf("quality %d out of range 0-100", c.Quality)
	}
	if c.Cron != "" && !gronx.New().IsValid(c.Cron) {
		return fmt.Errorf("invalid cron expression %q", c.Cron)
	}
	return nil
}

// minInterval is a var so scheduler tests can run with short timers.
var minInterval = MinInterval

// interval returns the effective repeating interval.
func (c Config) interval() time.Duration {
	d := c.Interval
	if d == 0 {
		d = DefaultInterval
	}
	if d < minInterval {
		d = minInterval
	}
	return d
}

// nextFire computes the next scheduled fire time after now: the next cron
// occurrence when an expression is configured, otherwise now + interval.
func (c Config) nextFire(now time.Time) (time.Time, error) {
	if c.Cron != "" {
		return gronx.NextTickAfter(c.Cron, now, false)
	}
	return now.Add(c.interval()), nil
}

// params derives the wire-level fetch parameters from the configuration.
func (c Config) params() composite.Params {
	return composite.Params{
		Token:         c.Token,
		Marine:        c.Marine,
		TwilightAngle: c.TwilightAngle,
		Size:          c.Size,
		Quality:       c.Quality,
	}
}
