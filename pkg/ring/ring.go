package ring

import "math"

// Parameter domains.
const (
	MinModules = 1
	MaxModules = 500
	MinArc     = 1.0
	MaxArc     = 360.0
	MinScale   = 0.1
	MaxScale   = 20.0
	MinRadius  = 0.1
	MaxRadius  = 20.0
)

// Calibration constants of the module template.
const (
	// BaseRadius is the distance from the ring center to a module's pivot
	// plane at unit scale and unit radius.
	BaseRadius = 2.5

	// DefaultModules is the module count that closes a full circle at unit
	// scale and radius. It fixes K so the default ring is self-consistent.
	DefaultModules = 20

	// K converts arc degrees at BaseRadius into a module count.
	K = DefaultModules / (360 * BaseRadius)

	// VStepBase is the net vertical pitch of one layer at unit scale.
	VStepBase = 0.6
)

// epsilon floors denominators of the governing relation.
const epsilon = 1e-6

// Fixed records which parameters are pinned by the user.
type Fixed struct {
	Modules bool `json:"modules" toml:"modules"`
	Arc     bool `json:"arc" toml:"arc"`
	Scale   bool `json:"scale" toml:"scale"`
	Radius  bool `json:"radius" toml:"radius"`
}

// Get reports whether p is pinned.
func (f Fixed) Get(p Param) bool {
	switch p {
	case Modules:
		return f.Modules
	case Arc:
		return f.Arc
	case Scale:
		return f.Scale
	case Radius:
		return f.Radius
	}
	return false
}

// Set pins or releases p.
func (f *Fixed) Set(p Param, v bool) {
	switch p {
	case Modules:
		f.Modules = v
	case Arc:
		f.Arc = v
	case Scale:
		f.Scale = v
	case Radius:
		f.Radius = v
	}
}

// Count returns the number of pinned parameters.
func (f Fixed) Count() int {
	n := 0
	for _, p := range Params {
		if f.Get(p) {
			n++
		}
	}
	return n
}

// Free returns the parameters that are not pinned, in priority order.
func (f Fixed) Free() []Param {
	var free []Param
	for _, p := range Params {
		if !f.Get(p) {
			free = append(free, p)
		}
	}
	return free
}

// Ring is one annular layer stack of modules.
// It holds values only; nothing in it is cached or derived.
type Ring struct {
	Modules int     `json:"modules" toml:"modules"`
	Arc     float64 `json:"arc" toml:"arc"`
	Scale   float64 `json:"scale" toml:"scale"`
	Radius  float64 `json:"radius" toml:"radius"`

	Fixed   Fixed `json:"fixed" toml:"fixed"`
	AutoKey Param `json:"autoKey" toml:"auto_key"`

	Layers       int     `json:"layers" toml:"layers"`
	YOffset      float64 `json:"yOffset" toml:"y_offset"`
	YOffsetAuto  bool    `json:"yOffsetAuto" toml:"y_offset_auto"`
	OriginModule int     `json:"originModule" toml:"origin_module"`

	Locked  bool `json:"locked" toml:"locked"`
	Visible bool `json:"visible" toml:"visible"`
}

// Default returns the default ring: a closed circle of 20 unit modules,
// ten layers high, with the radius derived from the other three.
func Default() Ring {
	return Ring{
		Modules:     DefaultModules,
		Arc:         360,
		Scale:       1,
		Radius:      1,
		Fixed:       Fixed{Modules: true, Arc: true, Scale: true},
		AutoKey:     Radius,
		Layers:      10,
		YOffsetAuto: true,
		Visible:     true,
	}
}

// Value returns the current value of p.
func (r Ring) Value(p Param) float64 {
	switch p {
	case Modules:
		return float64(r.Modules)
	case Arc:
		return r.Arc
	case Scale:
		return r.Scale
	case Radius:
		return r.Radius
	}
	return 0
}

// SetValue assigns v to p. Module counts are rounded to whole units.
func (r *Ring) SetValue(p Param, v float64) {
	switch p {
	case Modules:
		r.Modules = int(math.Round(v))
	case Arc:
		r.Arc = v
	case Scale:
		r.Scale = v
	case Radius:
		r.Radius = v
	}
}

// AngleStep returns the angular distance between adjacent modules in degrees.
func (r Ring) AngleStep() float64 {
	return r.Arc / float64(max(r.Modules, 1))
}

// LayerPitch returns the vertical distance between adjacent layers.
func (r Ring) LayerPitch() float64 {
	return VStepBase * r.Scale
}

// MaxOriginOffset bounds the origin module shift of a ring:
// max(1, round(modules·arc/360)).
func MaxOriginOffset(modules int, arc float64) int {
	return max(1, int(math.Round(float64(modules)*arc/360)))
}

// Residual returns modules·scale − K·arc·BaseRadius·radius. It is zero for
// a ring that satisfies the governing relation exactly.
func (r Ring) Residual() float64 {
	return float64(r.Modules)*r.Scale - K*r.Arc*BaseRadius*r.Radius
}
