package pipeline

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// RunFunc performs one regeneration.
type RunFunc func(ctx context.Context) error

// Scheduler coalesces regeneration requests.
//
// Every [Scheduler.Request] returns a monotonically increasing token. One
// worker, started with [Scheduler.Run], executes runs strictly one after
// another. When a run finishes and a newer token was issued meanwhile, the
// worker runs once more before the result is settled, however many requests
// arrived. A token is settled once a run that started after it was issued
// has completed.
type Scheduler struct {
	run    RunFunc
	logger *log.Logger

	mu      sync.Mutex
	next    uint64
	settled uint64
	runs    int
	err     error
	changed chan struct{}
	wake    chan struct{}
}

// NewScheduler returns a scheduler that calls run. A nil logger discards.
func NewScheduler(run RunFunc, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Scheduler{
		run:     run,
		logger:  logger,
		changed: make(chan struct{}),
		wake:    make(chan struct{}, 1),
	}
}

// Request asks for a regeneration and returns its token.
func (s *Scheduler) Request() uint64 {
	s.mu.Lock()
	s.next++
	tok := s.next
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return tok
}

// Latest returns the most recently issued token.
func (s *Scheduler) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Settled returns the newest settled token.
func (s *Scheduler) Settled() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settled
}

// Runs returns how many times the run function was called.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Wait blocks until token is settled and returns the error of the settling
// run.
func (s *Scheduler) Wait(ctx context.Context, token uint64) error {
	for {
		s.mu.Lock()
		if s.settled >= token {
			err := s.err
			s.mu.Unlock()
			return err
		}
		ch := s.changed
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Do requests a regeneration and waits for it.
func (s *Scheduler) Do(ctx context.Context) error {
	return s.Wait(ctx, s.Request())
}

// Run is the worker loop. It returns when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		}
		s.drain(ctx)
	}
}

func (s *Scheduler) drain(ctx context.Context) {
	for {
		s.mu.Lock()
		tok := s.next
		if tok == s.settled {
			s.mu.Unlock()
			return
		}
		s.runs++
		s.mu.Unlock()

		err := s.run(ctx)

		s.mu.Lock()
		if s.next != tok {
			s.mu.Unlock()
			s.logger.Debug("regeneration superseded", "token", tok)
			continue
		}
		s.settled = tok
		s.err = err
		close(s.changed)
		s.changed = make(chan struct{})
		s.mu.Unlock()
		return
	}
}
