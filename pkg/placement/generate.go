package placement

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	apperr "github.com/matzehuels/ringtower/pkg/errors"
	"github.com/matzehuels/ringtower/pkg/paint"
	"github.com/matzehuels/ringtower/pkg/ring"
	"github.com/matzehuels/ringtower/pkg/template"
)

// Generate expands every ring of set into instances, in ring, layer, module
// order. Colors are restored from colors by structural key; instances without
// a recorded color get [paint.Neutral].
//
// Rings are placed concurrently; the merge and color lookup run on the
// calling goroutine. Generate only fails when no template is resident or ctx
// is cancelled.
func Generate(ctx context.Context, set ring.Set, geom *template.Geometry, colors paint.ColorMap) ([]Instance, error) {
	if geom == nil {
		return nil, apperr.New(apperr.ErrCodeTemplateUnavailable, "module template has not been loaded")
	}

	perRing := make([][]Instance, len(set.Rings))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, r := range set.Rings {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perRing[i] = Ring(i, r)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Instance, 0, set.InstanceCount())
	for _, insts := range perRing {
		for _, inst := range insts {
			inst.Color, _ = colors.Lookup(inst.Key)
			out = append(out, inst)
		}
	}
	return out, nil
}

// Ring places the modules of a single ring. r is solved first, so Ring
// accepts unsolved input. Colors are left at [paint.Neutral].
func Ring(index int, r ring.Ring) []Instance {
	r = ring.Solve(r)

	pitch := r.LayerPitch()
	radial := ring.BaseRadius * (r.Radius - 1)

	out := make([]Instance, 0, r.Modules*r.Layers)
	for l := range r.Layers {
		y := r.YOffset + float64(l)*pitch
		for m := range r.Modules {
			theta := Angle(r, l, m)
			key := paint.Key{Ring: index, Layer: l, Module: m}
			out = append(out, Instance{
				Key:       key,
				Name:      key.Name(),
				Transform: NewTransform(degToRad(theta), y, r.Scale, radial),
				Color:     paint.Neutral,
				Visible:   r.Visible,
				Locked:    r.Locked,
			})
		}
	}
	return out
}

// Angle returns θ in degrees for a module of r. Odd layers are offset by
// half a step; r is not solved.
func Angle(r ring.Ring, layer, module int) float64 {
	step := r.AngleStep()
	stagger := 0.0
	if layer%2 == 1 {
		stagger = step / 2
	}
	return -r.Arc/2 + step/2 + float64(module)*step + stagger - float64(r.OriginModule)*step/2
}
