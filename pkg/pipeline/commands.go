package pipeline

import (
	"bytes"
	"context"

	"github.com/matzehuels/ringtower/pkg/container"
	apperr "github.com/matzehuels/ringtower/pkg/errors"
	"github.com/matzehuels/ringtower/pkg/paint"
	"github.com/matzehuels/ringtower/pkg/ring"
	"github.com/matzehuels/ringtower/pkg/template"
)

// Command is one edit applied by a [Studio]. Commands are applied one at a
// time in submission order; a failed command leaves the studio unchanged.
type Command interface {
	// Name identifies the command in logs and hooks.
	Name() string

	apply(ctx context.Context, s *Studio) error
}

// SetParam sets a pinned ring parameter.
type SetParam struct {
	Ring  int
	Param ring.Param
	Value float64
}

func (SetParam) Name() string { return "set-param" }

func (c SetParam) apply(_ context.Context, s *Studio) error {
	return s.editRings(func(set *ring.Set) error { return set.SetParam(c.Ring, c.Param, c.Value) })
}

// ToggleFixed pins or releases a ring parameter.
type ToggleFixed struct {
	Ring  int
	Param ring.Param
}

func (ToggleFixed) Name() string { return "toggle-fixed" }

func (c ToggleFixed) apply(_ context.Context, s *Studio) error {
	return s.editRings(func(set *ring.Set) error { return set.ToggleFixed(c.Ring, c.Param) })
}

// SetLayers changes the layer count of a ring.
type SetLayers struct {
	Ring   int
	Layers int
}

func (SetLayers) Name() string { return "set-layers" }

func (c SetLayers) apply(_ context.Context, s *Studio) error {
	return s.editRings(func(set *ring.Set) error { return set.SetLayers(c.Ring, c.Layers) })
}

// SetYOffset gives a ring a manual height.
type SetYOffset struct {
	Ring    int
	YOffset float64
}

func (SetYOffset) Name() string { return "set-y-offset" }

func (c SetYOffset) apply(_ context.Context, s *Studio) error {
	return s.editRings(func(set *ring.Set) error { return set.SetYOffset(c.Ring, c.YOffset) })
}

// ResetYOffset returns a ring to automatic stacking.
type ResetYOffset struct {
	Ring int
}

func (ResetYOffset) Name() string { return "reset-y-offset" }

func (c ResetYOffset) apply(_ context.Context, s *Studio) error {
	return s.editRings(func(set *ring.Set) error { return set.ResetYOffset(c.Ring) })
}

// SetOriginModule shifts the angular origin of a ring in half-module steps.
type SetOriginModule struct {
	Ring   int
	Origin int
}

func (SetOriginModule) Name() string { return "set-origin-module" }

func (c SetOriginModule) apply(_ context.Context, s *Studio) error {
	return s.editRings(func(set *ring.Set) error { return set.SetOriginModule(c.Ring, c.Origin) })
}

// AddRing appends a ring stacked on the current top ring.
type AddRing struct{}

func (AddRing) Name() string { return "add-ring" }

func (AddRing) apply(_ context.Context, s *Studio) error {
	return s.editRings(func(set *ring.Set) error {
		set.Add()
		return nil
	})
}

// DeleteRing removes a ring. Colors of later rings move down with them.
type DeleteRing struct {
	Ring int
}

func (DeleteRing) Name() string { return "delete-ring" }

func (c DeleteRing) apply(_ context.Context, s *Studio) error {
	return s.edit(func(set *ring.Set, colors paint.ColorMap) error {
		if set.Len() == 1 {
			return apperr.New(apperr.ErrCodeInvalidInput, "cannot delete the last ring")
		}
		if err := set.Delete(c.Ring); err != nil {
			return err
		}
		colors.DropRing(c.Ring)
		return nil
	})
}

// SetLocked locks or unlocks a ring against painting.
type SetLocked struct {
	Ring   int
	Locked bool
}

func (SetLocked) Name() string { return "set-locked" }

func (c SetLocked) apply(_ context.Context, s *Studio) error {
	return s.editRings(func(set *ring.Set) error { return set.SetLocked(c.Ring, c.Locked) })
}

// SetVisible shows or hides a ring.
type SetVisible struct {
	Ring    int
	Visible bool
}

func (SetVisible) Name() string { return "set-visible" }

func (c SetVisible) apply(_ context.Context, s *Studio) error {
	return s.editRings(func(set *ring.Set) error { return set.SetVisible(c.Ring, c.Visible) })
}

// Paint colors instances. Keys on locked rings or outside the current
// rings are skipped.
type Paint struct {
	Color paint.Color
	Keys  []paint.Key
}

func (Paint) Name() string { return "paint" }

func (c Paint) apply(_ context.Context, s *Studio) error {
	if len(c.Keys) == 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "paint needs at least one instance key")
	}
	return s.edit(func(set *ring.Set, colors paint.ColorMap) error {
		var keys []paint.Key
		for _, k := range c.Keys {
			r, err := set.At(k.Ring)
			if err != nil || r.Locked || k.Layer < 0 || k.Layer >= r.Layers || k.Module < 0 || k.Module >= r.Modules {
				continue
			}
			colors.Paint(k, c.Color)
			keys = append(keys, k)
		}
		if len(keys) == 0 {
			return apperr.New(apperr.ErrCodeInvalidInput, "no paintable instance among %d keys", len(c.Keys))
		}
		s.live.Paint(c.Color, keys...)
		return nil
	})
}

// ImportSnapshot replaces the ring set with the one described by Doc, a
// JSON snapshot or an exported container carrying one. A rejected document
// leaves the studio unchanged.
type ImportSnapshot struct {
	Doc []byte
}

func (ImportSnapshot) Name() string { return "import-snapshot" }

func (c ImportSnapshot) apply(_ context.Context, s *Studio) error {
	set, err := decodeImport(c.Doc)
	if err != nil {
		return err
	}
	return s.edit(func(cur *ring.Set, _ paint.ColorMap) error {
		*cur = set
		return nil
	})
}

func decodeImport(doc []byte) (ring.Set, error) {
	if bytes.HasPrefix(doc, []byte("glTF")) {
		set, ok, err := container.ExtractSnapshot(doc)
		if err != nil {
			return ring.Set{}, err
		}
		if !ok {
			return ring.Set{}, apperr.New(apperr.ErrCodeInvalidInput, "container carries no ring snapshot")
		}
		return set, nil
	}
	set, ok := ring.FromSnapshot(doc)
	if !ok {
		return ring.Set{}, apperr.New(apperr.ErrCodeInvalidInput, "snapshot is empty or malformed")
	}
	return set, nil
}

// LoadTemplate switches the module template. With Buffer set the template
// is taken from memory and Source only names it.
type LoadTemplate struct {
	Source string
	Buffer []byte
}

func (LoadTemplate) Name() string { return "load-template" }

func (c LoadTemplate) apply(ctx context.Context, s *Studio) error {
	if c.Source == "" && c.Buffer == nil {
		return apperr.New(apperr.ErrCodeInvalidInput, "template source is empty")
	}
	if c.Buffer != nil {
		// Decode up front so a bad buffer never replaces a good template.
		if _, err := template.Decode(c.Source, c.Buffer); err != nil {
			return err
		}
		s.loader.SetBuffer(c.Source, c.Buffer)
	} else {
		s.loader.SetSource(template.Source(c.Source))
	}
	s.touch()
	return nil
}
