package wallpaper

import (
	"context"
	"errors"
	"runtime"
)

// ErrRunnerClosed is returned by Do after the runner has been shut down.
var ErrRunnerClosed = errors.New("display thread runner is closed")

// Runner serializes display-configuration mutations onto a single locked
// OS thread. Desktop APIs silently misbehave on multi-display systems
// when backgrounds are set from arbitrary threads, so every SetBackground
// call hops through here regardless of which goroutine started the cycle.
type Runner struct {
	jobs chan func()
	quit chan struct{}
}

// StartRunner spawns the display thread and returns its runner.
func StartRunner() *Runner {
	r := &Runner{
		jobs: make(chan func()),
		quit: make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *Runner) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	for {
		select {
		case job := <-r.jobs:
			job()
		case <-r.quit:
			return
		}
	}
}

// Do runs fn on the display thread and waits for it to finish. It returns
// fn's error, the context error if ctx expires before fn is scheduled, or
// ErrRunnerClosed after Close.
//
// Once fn starts it runs to completion: there is no mid-flight
// cancellation of a display mutation.
func (r *Runner) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	wrapped := func() {
		result <- fn()
	}
	select {
	case r.jobs <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.quit:
		return ErrRunnerClosed
	}
	select {
	case err := <-result:
		return err
	case <-r.quit:
		return ErrRunnerClosed
	}
}

// Close stops the display thread. Pending Do calls return ErrRunnerClosed.
// Safe to call once.
func (r *Runner) Close() {
	close(r.quit)
}
