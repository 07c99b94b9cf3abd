package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type countingRunner struct {
	mu    sync.Mutex
	calls int
	done  chan struct{}
	want  int
}

func (r *countingRunner) ProcessAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.done != nil && r.calls == r.want {
		close(r.done)
	}
	return nil
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunFiresImmediately(t *testing.T) {
	r := &countingRunner{done: make(chan struct{}), want: 1}

	s := New(r, discardLogger())
	s.SetTickInterval(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(stopped)
	}()

	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("first run did not happen immediately")
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop on context cancel")
	}

	if got := r.count(); got != 1 {
		t.Errorf("run count = %d, want 1", got)
	}
}

func TestRunTicksOnInterval(t *testing.T) {
	r := &countingRunner{done: make(chan struct{}), want: 3}

	s := New(r, discardLogger())
	s.SetTickInterval(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected at least 3 runs, got %d", r.count())
	}
}

func TestSupervisorRefusesDuplicateJob(t *testing.T) {
	sup := NewSupervisor(discardLogger())

	release := make(chan struct{})
	started := make(chan struct{})
	job := func(_ context.Context) {
		close(started)
		<-release
	}

	ctx := context.Background()
	if !sup.Go(ctx, "rss", job) {
		t.Fatal("first Go must start the job")
	}
	<-started

	if !sup.Running("rss") {
		t.Error("Running must report the active job")
	}
	if sup.Go(ctx, "rss", func(_ context.Context) {}) {
		t.Error("second Go with the same name must be refused")
	}

	close(release)
	sup.Wait()

	if sup.Running("rss") {
		t.Error("job must be deregistered after it returns")
	}
	if !sup.Go(ctx, "rss", func(_ context.Context) {}) {
		t.Error("the name must be reusable once the job finished")
	}
	sup.Wait()
}

func TestSupervisorRunsDistinctJobsConcurrently(t *testing.T) {
	sup := NewSupervisor(discardLogger())

	ctx := context.Background()
	release := make(chan struct{})
	for _, name := range []string{"rss", "cleanup"} {
		if !sup.Go(ctx, name, func(_ context.Context) { <-release }) {
			t.Fatalf("job %q refused", name)
		}
	}
	if !sup.Running("rss") || !sup.Running("cleanup") {
		t.Error("both jobs must be reported as running")
	}
	close(release)
	sup.Wait()
}
