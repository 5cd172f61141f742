package paint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	key   Key
	color Color
}

func (i item) PaintKey() Key     { return i.key }
func (i item) PaintColor() Color { return i.color }

var red = Color{R: 1}

func TestCaptureRoundTrip(t *testing.T) {
	items := []item{
		{Key{0, 0, 0}, red},
		{Key{0, 0, 1}, Neutral},
		{Key{1, 2, 3}, Color{G: 0.25, B: 1}},
	}

	m := Capture(items)
	require.Len(t, m, 3)
	for _, it := range items {
		got, ok := m.Lookup(it.key)
		assert.True(t, ok)
		assert.Equal(t, it.color, got)
	}

	got, ok := m.Lookup(Key{5, 0, 0})
	assert.False(t, ok)
	assert.Equal(t, Neutral, got)
}

func TestDropRing(t *testing.T) {
	m := ColorMap{
		{0, 0, 0}: red,
		{1, 0, 0}: {G: 1},
		{1, 4, 2}: {G: 1},
		{2, 1, 1}: {B: 1},
		{3, 0, 5}: {R: 1, B: 1},
	}

	m.DropRing(1)

	assert.Equal(t, ColorMap{
		{0, 0, 0}: red,
		{1, 1, 1}: {B: 1},
		{2, 0, 5}: {R: 1, B: 1},
	}, m)
}

func TestDropRingLast(t *testing.T) {
	m := ColorMap{{0, 0, 0}: red, {1, 0, 0}: red}
	m.DropRing(1)
	assert.Equal(t, ColorMap{{0, 0, 0}: red}, m)

	m.DropRing(7)
	assert.Len(t, m, 1)
}

func TestPaintedOrder(t *testing.T) {
	m := ColorMap{
		{1, 0, 0}: red,
		{0, 2, 0}: red,
		{0, 1, 9}: red,
		{0, 1, 3}: Neutral,
	}
	assert.Equal(t, []Key{{0, 1, 9}, {0, 2, 0}, {1, 0, 0}}, m.Painted())
}

func TestPaintClamps(t *testing.T) {
	m := ColorMap{}
	m.Paint(Key{}, Color{R: 2, G: -1, B: 0.5})
	assert.Equal(t, Color{R: 1, G: 0, B: 0.5}, m[Key{}])
}

func TestCloneIndependent(t *testing.T) {
	m := ColorMap{{0, 0, 0}: red}
	c := m.Clone()
	c.Paint(Key{0, 0, 0}, Neutral)
	assert.Equal(t, red, m[Key{0, 0, 0}])

	var nilMap ColorMap
	assert.NotNil(t, nilMap.Clone())
}

func TestKeyName(t *testing.T) {
	tests := []struct {
		key  Key
		name string
	}{
		{Key{0, 0, 0}, "ring-0.layer-0.module-0"},
		{Key{2, 13, 499}, "ring-2.layer-13.module-499"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.key.Name())
			back, err := ParseKey(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.key, back)
		})
	}
}

func TestParseKeyErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"ring-0.layer-0",
		"ring-0.layer-0.module-x",
		"ring-0.module-0.layer-0",
		"ring--1.layer-0.module-0",
		"ring-0.layer-0.module-0.extra",
	} {
		if _, err := ParseKey(s); err == nil {
			t.Errorf("ParseKey(%q) succeeded, want error", s)
		}
	}
}

func TestColorMapJSONKeys(t *testing.T) {
	m := ColorMap{{1, 2, 3}: {R: 1}}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ring-1.layer-2.module-3": {"r": 1, "g": 0, "b": 0}}`, string(data))

	var back ColorMap
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, back)
}

func TestHex(t *testing.T) {
	c, err := ParseHex("#ff0000")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c.R, 1e-9)
	assert.InDelta(t, 0.0, c.G, 1e-9)
	assert.Equal(t, "#ff0000", c.Hex())

	c, err = ParseHex("808080")
	require.NoError(t, err)
	assert.Equal(t, "#808080", c.Hex())
	assert.InDelta(t, 0.2158, c.R, 1e-3, "hex is sRGB, Color is linear")

	_, err = ParseHex("#zzz")
	assert.Error(t, err)
}

func TestGamma(t *testing.T) {
	g := Color{R: 1, G: 0, B: 0.5}.Gamma()
	assert.Equal(t, 1.0, g[0])
	assert.Equal(t, 0.0, g[1])
	assert.InDelta(t, 0.7297, g[2], 1e-4)
}
