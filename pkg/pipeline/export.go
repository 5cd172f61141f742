package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/ringtower/pkg/cache"
	"github.com/matzehuels/ringtower/pkg/container"
	apperr "github.com/matzehuels/ringtower/pkg/errors"
	"github.com/matzehuels/ringtower/pkg/observability"
	"github.com/matzehuels/ringtower/pkg/ring"
	"github.com/matzehuels/ringtower/pkg/scene"
	"github.com/matzehuels/ringtower/pkg/store"
	"github.com/matzehuels/ringtower/pkg/template"
)

// cachedExport is the cache representation of a patched export.
type cachedExport struct {
	Buffer     []byte   `json:"buffer"`
	Primitives int      `json:"primitives"`
	Customized int      `json:"customized"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Export waits for pending edits, builds a container from the live scene,
// patches colors and the ring snapshot into it and stores it under name.
// An empty name gets a generated one when a store is configured.
func (s *Studio) Export(ctx context.Context, name string) (res *ExportResult, err error) {
	if s.opts.Store != nil {
		if name == "" {
			name = store.NewName()
		}
		if err := store.ValidateName(name); err != nil {
			return nil, err
		}
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnExportStart(ctx, name)
	defer func() {
		size := 0
		if res != nil {
			size = len(res.Buffer)
		}
		hooks.OnExportComplete(ctx, name, size, time.Since(start), err)
	}()

	if err := s.Sync(ctx); err != nil {
		return nil, err
	}
	geom, err := s.loader.Geometry(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	set := s.set.Clone()
	tree := s.tree
	s.mu.Unlock()
	if tree == nil {
		return nil, apperr.New(apperr.ErrCodeTemplateUnavailable, "no scene generated yet")
	}

	res, err = s.patch(ctx, geom, set, tree)
	if err != nil {
		return nil, err
	}
	res.Name = name

	if s.opts.Store != nil {
		if err := s.opts.Store.Put(ctx, name, res.Buffer); err != nil {
			return nil, err
		}
	}
	res.Duration = time.Since(start)

	s.logger.Info("exported",
		"name", name,
		"bytes", len(res.Buffer),
		"primitives", res.Primitives,
		"customized", res.Customized,
		"cached", res.CacheHit,
		"duration", res.Duration)
	return res, nil
}

// patch produces the patched buffer, consulting the export cache first.
func (s *Studio) patch(ctx context.Context, geom *template.Geometry, set ring.Set, tree *scene.Tree) (*ExportResult, error) {
	snap := ring.ToSnapshot(set)
	colors := scene.Colors(tree.Instances())

	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "encode snapshot")
	}
	colorJSON, err := json.Marshal(colors)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "encode colors")
	}
	key := s.opts.Keyer.ExportKey(geom.Hash, cache.ExportKeyOpts{Snapshot: snapJSON, Colors: colorJSON})

	if data, hit, err := s.opts.Cache.Get(ctx, key); err == nil && hit {
		var cached cachedExport
		if err := json.Unmarshal(data, &cached); err == nil {
			return &ExportResult{
				Buffer:     cached.Buffer,
				Primitives: cached.Primitives,
				Customized: cached.Customized,
				Warnings:   cached.Warnings,
				CacheHit:   true,
			}, nil
		}
		// A corrupt entry falls through to a rebuild.
	}

	built, err := scene.BuildContainer(geom, tree)
	if err != nil {
		return nil, err
	}
	patched, err := container.NewPatcher(s.logger).Patch(built, colors, snap)
	if err != nil {
		return nil, err
	}

	res := &ExportResult{
		Buffer:     patched.Buffer,
		Primitives: patched.Primitives,
		Customized: patched.Customized,
	}
	warnings := append(append([]container.Warning(nil), geom.Warnings...), patched.Warnings...)
	for _, w := range warnings {
		res.Warnings = append(res.Warnings, w.String())
	}

	if data, err := json.Marshal(cachedExport{
		Buffer:     res.Buffer,
		Primitives: res.Primitives,
		Customized: res.Customized,
		Warnings:   res.Warnings,
	}); err == nil {
		_ = s.opts.Cache.Set(ctx, key, data, s.opts.ExportTTL)
	}
	return res, nil
}
