package paint

import (
	"maps"
	"slices"
)

// Painted is anything that carries a structural key and a color.
type Painted interface {
	PaintKey() Key
	PaintColor() Color
}

// ColorMap maps structural keys to colors.
type ColorMap map[Key]Color

// Capture records the color of every item. Items still at [Neutral] are
// recorded too, so the map reflects the live set exactly.
func Capture[T Painted](items []T) ColorMap {
	m := make(ColorMap, len(items))
	for _, it := range items {
		m[it.PaintKey()] = it.PaintColor()
	}
	return m
}

// Lookup returns the color recorded for k, or [Neutral].
func (m ColorMap) Lookup(k Key) (Color, bool) {
	c, ok := m[k]
	if !ok {
		return Neutral, false
	}
	return c, true
}

// Paint records c for k.
func (m ColorMap) Paint(k Key, c Color) { m[k] = c.Clamped() }

// Clone returns a copy of m.
func (m ColorMap) Clone() ColorMap {
	if m == nil {
		return ColorMap{}
	}
	return maps.Clone(m)
}

// DropRing removes every key of ring i and moves keys of the rings above it
// down by one, matching the renumbering of a ring deletion.
func (m ColorMap) DropRing(i int) {
	shifted := make(ColorMap)
	for k, c := range m {
		switch {
		case k.Ring == i:
			delete(m, k)
		case k.Ring > i:
			delete(m, k)
			k.Ring--
			shifted[k] = c
		}
	}
	maps.Copy(m, shifted)
}

// Painted returns the keys whose color differs from [Neutral], in ring,
// layer, module order.
func (m ColorMap) Painted() []Key {
	var keys []Key
	for k, c := range m {
		if c != Neutral {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

func compareKeys(a, b Key) int {
	if a.Ring != b.Ring {
		return a.Ring - b.Ring
	}
	if a.Layer != b.Layer {
		return a.Layer - b.Layer
	}
	return a.Module - b.Module
}
