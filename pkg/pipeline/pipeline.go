// Package pipeline drives the edit → solve → generate → render → export
// loop of an interactive ring session.
//
// # Architecture
//
// A [Studio] owns the ring set, the paint map and the live instances. All
// edits arrive as [Command] values on a single queue and are applied in
// order, so the ring set never sees concurrent mutation. Every command that
// changes the scene requests a regeneration from the coalescing
// [Scheduler]: runs are serialized, and when requests pile up during a run
// only one more run is made, which always reflects the latest state.
//
// Export builds a container from the last instances, patches colors and the
// ring snapshot into it and hands the buffer to a [store.Store].
//
// # Usage
//
//	studio, err := pipeline.NewStudio(pipeline.Options{
//	    Template: "module.glb",
//	    Store:    st,
//	    Logger:   logger,
//	})
//	if err != nil {
//	    return err
//	}
//	go studio.Run(ctx)
//
//	if err := studio.Apply(ctx, pipeline.SetParam{Ring: 0, Param: ring.Scale, Value: 2}); err != nil {
//	    return err
//	}
//	res, err := studio.Export(ctx, "")
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ringtower/pkg/buildinfo"
	"github.com/matzehuels/ringtower/pkg/cache"
	"github.com/matzehuels/ringtower/pkg/placement"
	"github.com/matzehuels/ringtower/pkg/ring"
	"github.com/matzehuels/ringtower/pkg/scene"
	"github.com/matzehuels/ringtower/pkg/store"
	"github.com/matzehuels/ringtower/pkg/template"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultQueueSize is the capacity of the command queue.
	DefaultQueueSize = 64

	// DefaultExportTTL is how long patched exports stay in the cache.
	DefaultExportTTL = 24 * time.Hour
)

// =============================================================================
// Options
// =============================================================================

// Options configures a [Studio].
type Options struct {
	// Template is the initial module template source (path or URL).
	// Empty means no template until a LoadTemplate command arrives.
	Template string

	// Rings is the initial ring set. A zero set means [ring.NewSet].
	Rings ring.Set

	// Store receives exports. Nil disables persistence; Export then only
	// returns the buffer.
	Store store.Store

	// Renderer is called with every regenerated scene. Nil means none.
	Renderer scene.Renderer

	// Binder attaches renderer resources to live instances. Resources of
	// the previous generation are released before the next is bound.
	Binder placement.Binder

	// Cache holds downloaded templates and patched exports.
	Cache cache.Cache
	Keyer cache.Keyer

	// Loader overrides the template loader options. Cache and Logger are
	// filled from the fields above when unset, Keyer only when set here.
	Loader template.Options

	QueueSize int
	ExportTTL time.Duration

	Logger *log.Logger
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Rings.Len() == 0 {
		o.Rings = ring.NewSet()
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.Loader.Cache == nil {
		o.Loader.Cache = o.Cache
	}
	if o.Loader.Keyer == nil && o.Keyer != nil {
		o.Loader.Keyer = o.Keyer
	}
	if o.Keyer == nil {
		// Exports carry the generator version, so cached exports are
		// scoped to the build that produced them.
		o.Keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	}
	if o.QueueSize == 0 {
		o.QueueSize = DefaultQueueSize
	}
	if o.ExportTTL == 0 {
		o.ExportTTL = DefaultExportTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Loader.Logger == nil {
		o.Loader.Logger = o.Logger
	}
}

// Validate checks option values after defaults are applied.
func (o *Options) Validate() error {
	if o.QueueSize < 1 {
		return fmt.Errorf("queue size must be positive, got %d", o.QueueSize)
	}
	if o.ExportTTL < 0 {
		return fmt.Errorf("export ttl must not be negative, got %s", o.ExportTTL)
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// ExportResult describes a finished export.
type ExportResult struct {
	// Name is the asset name in the store. Empty when no store is set.
	Name string

	Buffer     []byte
	Primitives int
	Customized int

	// Warnings are recoverable container problems, such as a clipped
	// binary chunk.
	Warnings []string

	// CacheHit is true when the patched buffer came from the cache.
	CacheHit bool
	Duration time.Duration
}
