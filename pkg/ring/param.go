package ring

import (
	"fmt"
	"math"
)

// Param identifies one of the four coupled ring parameters.
// The zero value is not a valid parameter.
type Param int

const (
	Modules Param = iota + 1
	Arc
	Scale
	Radius
)

// Params lists the coupled parameters in solver priority order.
var Params = [...]Param{Modules, Arc, Scale, Radius}

var paramNames = map[Param]string{
	Modules: "modules",
	Arc:     "arc",
	Scale:   "scale",
	Radius:  "radius",
}

// Valid reports whether p names one of the four coupled parameters.
func (p Param) Valid() bool { return p >= Modules && p <= Radius }

func (p Param) String() string {
	if name, ok := paramNames[p]; ok {
		return name
	}
	return fmt.Sprintf("param(%d)", int(p))
}

// ParseParam parses a parameter name as used in snapshots and on the CLI.
func ParseParam(s string) (Param, error) {
	for p, name := range paramNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown ring parameter %q (must be one of: modules, arc, scale, radius)", s)
}

// MarshalText encodes the parameter by name.
func (p Param) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return []byte(""), nil
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a parameter name. Unknown names decode to the zero
// value; the solver then reassigns a valid auto key.
func (p *Param) UnmarshalText(text []byte) error {
	parsed, err := ParseParam(string(text))
	if err != nil {
		*p = 0
		return nil
	}
	*p = parsed
	return nil
}

// domain is the legal range and rounding step of a parameter.
type domain struct {
	min, max float64
	perUnit  float64 // rounding steps per unit: 1 → whole, 2 → 0.5, 10 → 0.1
}

var domains = map[Param]domain{
	Modules: {min: MinModules, max: MaxModules, perUnit: 1},
	Arc:     {min: MinArc, max: MaxArc, perUnit: 2},
	Scale:   {min: MinScale, max: MaxScale, perUnit: 10},
	Radius:  {min: MinRadius, max: MaxRadius, perUnit: 10},
}

// Step returns the rounding step of p.
func (p Param) Step() float64 { return 1 / domains[p].perUnit }

// Bounds returns the inclusive legal range of p.
func (p Param) Bounds() (lo, hi float64) {
	d := domains[p]
	return d.min, d.max
}

// clamp limits v to the domain of p. NaN collapses to the minimum.
func (p Param) clamp(v float64) float64 {
	d := domains[p]
	if math.IsNaN(v) {
		return d.min
	}
	return math.Max(d.min, math.Min(d.max, v))
}

// quantize clamps v and rounds it to the step of p.
// Dividing by the per-unit count keeps results like 0.3 exact.
func (p Param) quantize(v float64) float64 {
	d := domains[p]
	return p.clamp(math.Round(p.clamp(v)*d.perUnit) / d.perUnit)
}
