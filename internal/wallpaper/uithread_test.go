package wallpaper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRunner_SerializesJobs(t *testing.T) {
	r := StartRunner()
	defer r.Close()

	var mu sync.Mutex
	var order []int
	var inFlight, maxInFlight int

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Do(context.Background(), func() error {
				mu.Lock()
				inFlight++
				if inFlight > maxInFlight {
					maxInFlight = inFlight
				}
				order = append(order, i)
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				inFlight--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if maxInFlight != 1 {
		t.Fatalf("jobs overlapped: max in flight %d", maxInFlight)
	}
	if len(order) != 8 {
		t.Fatalf("expected 8 jobs to run, got %d", len(order))
	}
}

func TestRunner_ReturnsJobError(t *testing.T) {
	r := StartRunner()
	defer r.Close()

	want := errors.New("display busy")
	if err := r.Do(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected job error, got %v", err)
	}
}

func TestRunner_ContextCancelBeforeScheduling(t *testing.T) {
	r := StartRunner()
	defer r.Close()

	// Occupy the thread so the second job cannot be scheduled.
	release := make(chan struct{})
	go r.Do(context.Background(), func() error {
		<-release
		return nil
	})
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Do(ctx, func() error {
		t.Error("job must not run after cancellation")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	close(release)
}

func TestRunner_DoAfterClose(t *testing.T) {
	r := StartRunner()
	r.Close()

	// Give the loop a moment to observe quit.
	time.Sleep(10 * time.Millisecond)
	err := r.Do(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrRunnerClosed) {
		t.Fatalf("expected ErrRunnerClosed, got %v", err)
	}
}
