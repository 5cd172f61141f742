package ring

import "math"

// maxSolvePasses bounds the fixed-point iteration over the free parameters.
// Rounding to parameter steps settles within a handful of passes.
const maxSolvePasses = 16

// SelectAutoKey returns the primary free parameter. The current key is kept
// while it is free; otherwise the first free parameter in [Params] order is
// chosen. If every parameter is pinned, Radius is returned.
func SelectAutoKey(fixed Fixed, current Param) Param {
	if current.Valid() && !fixed.Get(current) {
		return current
	}
	for _, p := range Params {
		if !fixed.Get(p) {
			return p
		}
	}
	return Radius
}

// NormalizeFixed guarantees one to three pinned parameters. With none pinned,
// Modules is pinned; with all four pinned, the previous auto key is released
// (Radius when autoKey is not a valid parameter).
func NormalizeFixed(fixed Fixed, autoKey Param) Fixed {
	switch fixed.Count() {
	case 0:
		fixed.Modules = true
	case len(Params):
		release := autoKey
		if !release.Valid() {
			release = Radius
		}
		fixed.Set(release, false)
	}
	return fixed
}

// Solve returns r with every parameter in its domain and the free
// parameters recomputed from the governing relation. Pinned parameters keep
// their pre-solve values (clamped to their domains). Solve is idempotent.
func Solve(r Ring) Ring {
	r.Fixed = NormalizeFixed(r.Fixed, r.AutoKey)
	r.AutoKey = SelectAutoKey(r.Fixed, r.AutoKey)

	pinned := make(map[Param]float64, len(Params))
	for _, p := range Params {
		if r.Fixed.Get(p) {
			pinned[p] = p.clamp(r.Value(p))
		}
		r.SetValue(p, p.clamp(r.Value(p)))
	}

	order := solveOrder(r.Fixed, r.AutoKey)
	for pass := 0; pass < maxSolvePasses; pass++ {
		moved := false
		for _, p := range order {
			v := p.quantize(invert(r, p))
			if v != r.Value(p) {
				r.SetValue(p, v)
				moved = true
			}
		}
		if !moved {
			break
		}
	}

	// Pinned values are never written above; re-assert them anyway so that
	// no rounding path can perturb them.
	for p, v := range pinned {
		r.SetValue(p, v)
	}

	r.Layers = max(r.Layers, 1)
	limit := MaxOriginOffset(r.Modules, r.Arc)
	r.OriginModule = max(-limit, min(limit, r.OriginModule))
	return r
}

// solveOrder lists the free parameters with the auto key first.
func solveOrder(fixed Fixed, autoKey Param) []Param {
	order := []Param{autoKey}
	for _, p := range fixed.Free() {
		if p != autoKey {
			order = append(order, p)
		}
	}
	return order
}

// invert solves the governing relation for p using the other three values.
func invert(r Ring, p Param) float64 {
	base := K * BaseRadius
	modules := math.Max(float64(r.Modules), epsilon)
	arc := math.Max(r.Arc, epsilon)
	scale := math.Max(r.Scale, epsilon)
	radius := math.Max(r.Radius, epsilon)

	switch p {
	case Modules:
		return base * arc * radius / scale
	case Arc:
		return modules * scale / (base * radius)
	case Scale:
		return base * arc * radius / modules
	case Radius:
		return modules * scale / (base * arc)
	}
	return r.Value(p)
}
