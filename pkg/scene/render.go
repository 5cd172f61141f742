package scene

import (
	"context"
	"encoding/json"
	"io"

	"github.com/charmbracelet/log"
)

// Renderer displays a scene tree. Renderers never report back into the
// pipeline beyond an error.
type Renderer interface {
	Render(ctx context.Context, t *Tree) error
}

// RendererFunc adapts a function to [Renderer].
type RendererFunc func(ctx context.Context, t *Tree) error

func (f RendererFunc) Render(ctx context.Context, t *Tree) error { return f(ctx, t) }

// JSONRenderer writes every tree as one JSON document.
type JSONRenderer struct {
	W      io.Writer
	Indent bool
}

func (r JSONRenderer) Render(_ context.Context, t *Tree) error {
	enc := json.NewEncoder(r.W)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(t)
}

// LogRenderer logs a one-line summary per ring.
type LogRenderer struct {
	Logger *log.Logger
}

func (r LogRenderer) Render(_ context.Context, t *Tree) error {
	for _, rn := range t.Rings {
		r.Logger.Info("ring",
			"index", rn.Index,
			"modules", rn.Ring.Modules,
			"arc", rn.Ring.Arc,
			"scale", rn.Ring.Scale,
			"radius", rn.Ring.Radius,
			"layers", rn.Ring.Layers,
			"y", rn.Ring.YOffset,
			"instances", len(rn.Instances))
	}
	return nil
}
