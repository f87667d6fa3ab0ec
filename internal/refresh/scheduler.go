package refresh

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime/debug"
	"sync"
	"time"

	"github.com/earthwall/earthwall/internal/composite"
	"github.com/earthwall/earthwall/pkg/logger"
)

// State is the scheduler's lifecycle state.
type State int

const (
	// Idle: no timer armed (no usable token, or never configured).
	Idle State = iota
	// Scheduled: a timer is armed and the next fire time is known.
	Scheduled
	// Running: a fetch+apply cycle is in flight. Exclusive.
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

var (
	// ErrAlreadyRefreshing is returned by TriggerManual while a cycle is
	// in flight. The running cycle is never cancelled and no trigger is
	// queued.
	ErrAlreadyRefreshing = errors.New("a refresh is already in progress")

	// ErrNoToken is returned by TriggerManual when no API token is
	// configured.
	ErrNoToken = errors.New("no API token configured, refresh disabled")
)

// Fetcher fetches a composite image. Implemented by composite.Client.
type Fetcher interface {
	Fetch(ctx context.Context, p composite.Params) (*composite.Result, error)
}

// Applier persists an image and applies it to all displays. Implemented
// by wallpaper.Applicator.
type Applier interface {
	Apply(ctx context.Context, img image.Image) (string, error)
}

// Scheduler drives periodic fetch+apply cycles. It guarantees a single
// armed timer and at most one in-flight cycle for all interleavings of
// timer fires, manual triggers and reconfiguration.
type Scheduler struct {
	mu       sync.Mutex
	state    State
	cfg      Config
	timer    *time.Timer
	nextFire time.Time

	ctx      context.Context
	fetcher  Fetcher
	applier  Applier
	handlers *Handlers
	log      logger.Logger
	now      func() time.Time

	lastSuccess time.Time
	lastMessage string
}

// New creates a scheduler in Idle state. The scheduler stops arming
// timers once ctx is cancelled; an in-flight cycle still runs to
// completion.
func New(ctx context.Context, fetcher Fetcher, applier Applier, handlers *Handlers, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if handlers == nil {
		handlers = &Handlers{}
	}
	handlers.setDefault(log)
	return &Scheduler{
		state:    Idle,
		ctx:      ctx,
		fetcher:  fetcher,
		applier:  applier,
		handlers: handlers,
		log:      log,
		now:      time.Now,
	}
}

// Configure replaces the active configuration. Any armed timer is torn
// down first, so two timers are never simultaneously armed. Without a
// usable token the scheduler stays Idle; otherwise it arms one timer and
// becomes Scheduled. Safe to call in any state; a running cycle finishes
// under the old configuration.
func (s *Scheduler) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.disarmLocked()
	s.cfg = cfg

	if !cfg.HasToken() {
		if s.state != Running {
			s.state = Idle
		}
		s.log.Info("no API token configured, refresh schedule disabled")
		return nil
	}

	if err := s.armLocked(); err != nil {
		return err
	}
	if s.state != Running {
		s.state = Scheduled
	}
	s.log.Info("refresh scheduled, next fire at %s", s.nextFire.Format(time.RFC3339))
	return nil
}

// TriggerManual starts a cycle immediately. While Running it is rejected
// with ErrAlreadyRefreshing; with no token it returns ErrNoToken. If a
// timer is armed, the next fire time is recomputed relative to now.
func (s *Scheduler) TriggerManual() error {
	s.mu.Lock()
	if s.state == Running {
		s.mu.Unlock()
		return ErrAlreadyRefreshing
	}
	if !s.cfg.HasToken() {
		s.mu.Unlock()
		return ErrNoToken
	}

	s.disarmLocked()
	if err := s.armLocked(); err != nil {
		s.log.Warning("could not re-arm timer after manual trigger: %v", err)
	}
	s.state = Running
	cfg := s.cfg
	s.mu.Unlock()

	go s.safeRunCycle(cfg, "manual")
	return nil
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// NextFire returns the next scheduled fire time, zero if none.
func (s *Scheduler) NextFire() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextFire
}

// LastSuccess returns the timestamp of the most recent successful cycle,
// zero if none.
func (s *Scheduler) LastSuccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSuccess
}

// LastMessage returns the most recently published status string.
func (s *Scheduler) LastMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMessage
}

// Stop disarms the timer and returns the scheduler to Idle. An in-flight
// cycle runs to completion.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarmLocked()
	if s.state != Running {
		s.state = Idle
	}
}

// armLocked arms exactly one timer for the next fire time. Caller holds mu.
func (s *Scheduler) armLocked() error {
	next, err := s.cfg.nextFire(s.now())
	if err != nil {
		return fmt.Errorf("compute next fire: %w", err)
	}
	s.nextFire = next
	s.timer = time.AfterFunc(time.Until(next), s.onTimerFire)
	s.handlers.NextFireHandler(next)
	return nil
}

// disarmLocked cancels any armed timer and clears the next fire time.
// Caller holds mu.
func (s *Scheduler) disarmLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.nextFire = time.Time{}
	s.handlers.NextFireHandler(time.Time{})
}

// onTimerFire handles a timer tick: republish the next fire time
// immediately so "time until next refresh" stays accurate while the cycle
// runs, then start the cycle. A tick that lands while a cycle is still in
// flight is coalesced: the schedule advances but no second cycle starts.
func (s *Scheduler) onTimerFire() {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	if err := s.armLocked(); err != nil {
		s.log.Error("could not re-arm refresh timer: %v", err)
	}
	if s.state == Running {
		s.mu.Unlock()
		s.log.Warning("refresh still in flight at scheduled fire, skipping this tick")
		return
	}
	if !s.cfg.HasToken() {
		s.mu.Unlock()
		return
	}
	s.state = Running
	cfg := s.cfg
	s.mu.Unlock()

	go s.safeRunCycle(cfg, "scheduled")
}

// safeRunCycle runs a cycle with panic recovery so a misbehaving platform
// collaborator cannot take the daemon down.
func (s *Scheduler) safeRunCycle(cfg Config, trigger string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("PANIC [refresh cycle]: %v\n%s", r, debug.Stack())
			s.finishCycle(s.now(), fmt.Errorf("internal error: %v", r))
		}
	}()
	s.runCycle(cfg, trigger)
}

// runCycle executes one fetch+apply cycle. Every error is terminal for
// the cycle; the next trigger gets a fresh attempt.
func (s *Scheduler) runCycle(cfg Config, trigger string) {
	started := s.now()
	s.publishStatus("refreshing wallpaper (" + trigger + ")...")

	res, err := s.fetcher.Fetch(s.ctx, cfg.params())
	if err != nil {
		s.finishCycle(started, err)
		return
	}

	if _, err := s.applier.Apply(s.ctx, res.Image); err != nil {
		s.finishCycle(started, err)
		return
	}

	s.mu.Lock()
	s.lastSuccess = res.FetchedAt
	s.mu.Unlock()
	s.handlers.SuccessHandler(res.Image, res.FetchedAt)
	s.publishStatus("wallpaper updated at " + res.FetchedAt.Format(time.Kitchen))
	s.finishCycle(started, nil)
}

// finishCycle transitions out of Running and notifies the sink. The next
// state depends on whether a timer is still armed.
func (s *Scheduler) finishCycle(started time.Time, err error) {
	s.mu.Lock()
	if s.timer != nil {
		s.state = Scheduled
	} else {
		s.state = Idle
	}
	s.mu.Unlock()

	if err != nil {
		s.publishStatus(err.Error())
		s.handlers.ErrorHandler(err)
	}
	s.handlers.CycleHandler(started, err)
}

func (s *Scheduler) publishStatus(msg string) {
	s.mu.Lock()
	s.lastMessage = msg
	s.mu.Unlock()
	s.handlers.StatusHandler(msg)
}
