package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	apperr "github.com/matzehuels/ringtower/pkg/errors"
	"github.com/matzehuels/ringtower/pkg/observability"
	"github.com/matzehuels/ringtower/pkg/paint"
	"github.com/matzehuels/ringtower/pkg/placement"
	"github.com/matzehuels/ringtower/pkg/ring"
	"github.com/matzehuels/ringtower/pkg/scene"
	"github.com/matzehuels/ringtower/pkg/template"
)

// Studio is an editing session: a ring set, its paint map and the live
// instances generated from them.
//
// Edits go through [Studio.Submit] or [Studio.Apply] and are applied by the
// goroutine running [Studio.Run]. Read accessors are safe to call from any
// goroutine.
type Studio struct {
	opts   Options
	logger *log.Logger
	loader *template.Loader
	sched  *Scheduler
	queue  chan envelope
	live   *placement.Collection

	mu      sync.Mutex
	set     ring.Set
	colors  paint.ColorMap
	// version is the regeneration token of the last committed edit.
	version uint64
	tree    *scene.Tree
}

type envelope struct {
	ctx  context.Context
	cmd  Command
	done chan reply
}

type reply struct {
	token uint64
	err   error
}

// NewStudio creates a studio. Call [Studio.Run] to start processing.
func NewStudio(opts Options) (*Studio, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeConfiguration, err, "invalid studio options")
	}

	set := opts.Rings.Clone()
	set.Normalize()

	s := &Studio{
		opts:   opts,
		logger: opts.Logger,
		loader: template.NewLoader(opts.Loader),
		queue:  make(chan envelope, opts.QueueSize),
		live:   placement.NewCollection(opts.Binder),
		set:    set,
		colors: paint.ColorMap{},
	}
	if opts.Template != "" {
		s.loader.SetSource(template.Source(opts.Template))
	}
	s.sched = NewScheduler(s.regenerate, opts.Logger)
	s.version = s.sched.Request()
	return s, nil
}

// Run processes commands and regenerations until ctx is cancelled. The
// first generation is already requested by [NewStudio]. Live instances are
// released on return.
func (s *Studio) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.sched.Run(ctx) })
	g.Go(func() error { return s.loop(ctx) })

	err := g.Wait()
	s.live.Release()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Studio) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-s.queue:
			name := env.cmd.Name()
			err := env.cmd.apply(env.ctx, s)
			observability.Pipeline().OnCommand(env.ctx, name, err)

			var tok uint64
			if err != nil {
				s.logger.Warn("command rejected", "command", name, "error", err)
			} else {
				tok = s.committed()
				s.logger.Debug("command applied", "command", name, "token", tok)
			}
			env.done <- reply{token: tok, err: err}
		}
	}
}

// Submit queues cmd and waits until it is applied. It returns the
// regeneration token of the edit without waiting for the regeneration.
func (s *Studio) Submit(ctx context.Context, cmd Command) (uint64, error) {
	env := envelope{ctx: ctx, cmd: cmd, done: make(chan reply, 1)}
	select {
	case s.queue <- env:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case r := <-env.done:
		return r.token, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Apply submits cmd and waits until the scene reflects it. The error is
// the command's, or else the error of the regeneration that settled it.
func (s *Studio) Apply(ctx context.Context, cmd Command) error {
	tok, err := s.Submit(ctx, cmd)
	if err != nil {
		return err
	}
	return s.sched.Wait(ctx, tok)
}

// Sync waits until every submitted edit is reflected in the scene.
func (s *Studio) Sync(ctx context.Context) error {
	return s.sched.Wait(ctx, s.sched.Latest())
}

// Rings returns a copy of the current ring set.
func (s *Studio) Rings() ring.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Clone()
}

// Colors returns a copy of the paint map.
func (s *Studio) Colors() paint.ColorMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.colors.Clone()
}

// Instances returns the live instances.
func (s *Studio) Instances() []placement.Instance { return s.live.Instances() }

// Generation returns the generation number of the live instances.
func (s *Studio) Generation() uint64 { return s.live.Generation() }

// Tree returns the last rendered scene, or nil before the first
// generation.
func (s *Studio) Tree() *scene.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Loader returns the template loader.
func (s *Studio) Loader() *template.Loader { return s.loader }

// Scheduler returns the regeneration scheduler.
func (s *Studio) Scheduler() *Scheduler { return s.sched }

// edit applies fn to copies of the ring set and paint map and commits them
// only when fn succeeds.
func (s *Studio) edit(fn func(set *ring.Set, colors paint.ColorMap) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.set.Clone()
	colors := s.colors.Clone()
	if err := fn(&set, colors); err != nil {
		return err
	}
	s.set, s.colors = set, colors
	s.commit()
	return nil
}

func (s *Studio) editRings(fn func(set *ring.Set) error) error {
	return s.edit(func(set *ring.Set, _ paint.ColorMap) error { return fn(set) })
}

// touch marks the scene stale without changing the ring set.
func (s *Studio) touch() {
	s.mu.Lock()
	s.commit()
	s.mu.Unlock()
}

// commit requests the regeneration of an edit. The caller holds s.mu, so a
// run that compares versions never sees the edit without its token.
func (s *Studio) commit() {
	s.version = s.sched.Request()
}

// committed returns the token of the last committed edit.
func (s *Studio) committed() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// regenerate is the scheduler's run function.
func (s *Studio) regenerate(ctx context.Context) error {
	s.mu.Lock()
	set := s.set.Clone()
	colors := s.colors.Clone()
	version := s.version
	s.mu.Unlock()

	geom, err := s.loader.Geometry(ctx)
	if err != nil {
		s.logger.Warn("template unavailable", "source", s.loader.Source(), "error", err)
		return err
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnGenerateStart(ctx, set.Len(), set.InstanceCount())
	insts, err := placement.Generate(ctx, set, geom, colors)
	hooks.OnGenerateComplete(ctx, len(insts), time.Since(start), err)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.version != version {
		// An edit landed during the run. Its token is newer, so the
		// scheduler runs again before settling.
		s.mu.Unlock()
		return nil
	}
	gen := s.live.Replace(insts)
	s.colors = paint.Capture(insts)
	tree := scene.NewTree(set, insts)
	tree.Generation = gen
	s.tree = tree
	s.mu.Unlock()

	s.logger.Debug("generated",
		"rings", set.Len(),
		"instances", len(insts),
		"generation", gen,
		"duration", time.Since(start))

	if s.opts.Renderer != nil {
		if err := s.opts.Renderer.Render(ctx, tree); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}
	return nil
}
