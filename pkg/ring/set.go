package ring

import (
	"github.com/jinzhu/copier"

	apperr "github.com/matzehuels/ringtower/pkg/errors"
)

// Set is the ordered collection of rings that makes up one structure.
// It is a plain value: callers own it and pass it explicitly.
//
// Every mutating method solves the edited ring and re-runs [Cascade], so a
// Set obtained through this API is always consistent.
type Set struct {
	Rings []Ring `json:"rings" toml:"ring"`
}

// NewSet returns a set holding a single default ring.
func NewSet() Set {
	s := Set{Rings: []Ring{Default()}}
	s.Normalize()
	return s
}

// Len returns the number of rings.
func (s Set) Len() int { return len(s.Rings) }

// At returns a copy of ring i.
func (s Set) At(i int) (Ring, error) {
	if err := s.check(i); err != nil {
		return Ring{}, err
	}
	return s.Rings[i], nil
}

// Clone returns a deep copy of s.
func (s Set) Clone() Set {
	var out Set
	if err := copier.CopyWithOption(&out, &s, copier.Option{DeepCopy: true}); err != nil {
		out.Rings = append([]Ring(nil), s.Rings...)
	}
	return out
}

// Normalize solves every ring and cascades vertical offsets.
func (s *Set) Normalize() {
	for i := range s.Rings {
		s.Rings[i] = Solve(s.Rings[i])
	}
	Cascade(s.Rings)
}

// Add appends a new ring stacked on the last one. The new ring starts from
// the defaults and inherits the previous ring's scale. It returns the index
// of the new ring.
func (s *Set) Add() int {
	r := Default()
	if n := len(s.Rings); n > 0 {
		prev := s.Rings[n-1]
		r.Scale = prev.Scale
		r.YOffset = StackOffset(prev)
	}
	s.Rings = append(s.Rings, Solve(r))
	Cascade(s.Rings)
	return len(s.Rings) - 1
}

// Delete removes ring i. Rings above it keep their automatic offsets and
// are re-stacked.
func (s *Set) Delete(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.Rings = append(s.Rings[:i], s.Rings[i+1:]...)
	Cascade(s.Rings)
	return nil
}

// Update applies fn to ring i, then solves it and cascades the set.
func (s *Set) Update(i int, fn func(*Ring)) error {
	if err := s.check(i); err != nil {
		return err
	}
	fn(&s.Rings[i])
	s.Rings[i] = Solve(s.Rings[i])
	Cascade(s.Rings)
	return nil
}

// SetParam assigns a value to a pinned parameter of ring i. Free parameters
// are owned by the solver and cannot be edited directly.
func (s *Set) SetParam(i int, p Param, v float64) error {
	if !p.Valid() {
		return apperr.New(apperr.ErrCodeInvalidInput, "invalid ring parameter %d", int(p))
	}
	r, err := s.At(i)
	if err != nil {
		return err
	}
	if !r.Fixed.Get(p) {
		return apperr.New(apperr.ErrCodeInvalidInput, "ring %d: %s is derived by the solver; pin it before editing", i, p)
	}
	return s.Update(i, func(r *Ring) { r.SetValue(p, v) })
}

// ToggleFixed pins or releases parameter p of ring i. The solver keeps the
// pinned count between one and three.
func (s *Set) ToggleFixed(i int, p Param) error {
	if !p.Valid() {
		return apperr.New(apperr.ErrCodeInvalidInput, "invalid ring parameter %d", int(p))
	}
	return s.Update(i, func(r *Ring) { r.Fixed.Set(p, !r.Fixed.Get(p)) })
}

// SetAutoKey chooses the primary free parameter of ring i.
func (s *Set) SetAutoKey(i int, p Param) error {
	return s.Update(i, func(r *Ring) { r.AutoKey = p })
}

// SetLayers sets the layer count of ring i. Counts below one are clamped.
func (s *Set) SetLayers(i, layers int) error {
	return s.Update(i, func(r *Ring) { r.Layers = layers })
}

// SetYOffset sets a manual vertical offset on ring i, detaching it from
// the cascade.
func (s *Set) SetYOffset(i int, y float64) error {
	return s.Update(i, func(r *Ring) {
		r.YOffset = y
		r.YOffsetAuto = false
	})
}

// ResetYOffset returns ring i to automatic stacking.
func (s *Set) ResetYOffset(i int) error {
	return s.Update(i, func(r *Ring) { r.YOffsetAuto = true })
}

// SetOriginModule shifts the angular origin of ring i by half steps.
func (s *Set) SetOriginModule(i, origin int) error {
	return s.Update(i, func(r *Ring) { r.OriginModule = origin })
}

// SetLocked excludes ring i from (or returns it to) paint interaction.
func (s *Set) SetLocked(i int, locked bool) error {
	return s.Update(i, func(r *Ring) { r.Locked = locked })
}

// SetVisible shows or hides ring i.
func (s *Set) SetVisible(i int, visible bool) error {
	return s.Update(i, func(r *Ring) { r.Visible = visible })
}

// InstanceCount returns the number of module instances the set expands to.
func (s Set) InstanceCount() int {
	n := 0
	for _, r := range s.Rings {
		n += r.Modules * r.Layers
	}
	return n
}

func (s Set) check(i int) error {
	if i < 0 || i >= len(s.Rings) {
		return apperr.New(apperr.ErrCodeInvalidInput, "ring index %d out of range [0,%d)", i, len(s.Rings))
	}
	return nil
}
