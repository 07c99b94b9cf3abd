package scheduler

import (
	"context"
	"log/slog"
	"sync"
)

// Supervisor owns at most one outstanding background task per job name. It
// replaces ambient "is a task already running" state with an explicit owner
// the caller can ask.
type Supervisor struct {
	log *slog.Logger

	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// NewSupervisor creates an empty Supervisor.
func NewSupervisor(log *slog.Logger) *Supervisor {
	return &Supervisor{
		log:     log,
		running: make(map[string]struct{}),
	}
}

// Go spawns job in a goroutine unless a job with the same name is still
// running. It reports whether the job was started.
func (s *Supervisor) Go(ctx context.Context, name string, job func(ctx context.Context)) bool {
	s.mu.Lock()
	if _, busy := s.running[name]; busy {
		s.mu.Unlock()
		s.log.Warn("task already running, not spawning another", "task", name)
		return false
	}
	s.running[name] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.running, name)
			s.mu.Unlock()
			s.wg.Done()
		}()
		job(ctx)
	}()
	return true
}

// Running reports whether a job with the given name is currently running.
func (s *Supervisor) Running(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.running[name]
	return busy
}

// Wait blocks until every spawned job has returned.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}
