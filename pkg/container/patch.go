package container

import (
	"encoding/json"
	"io"

	"github.com/charmbracelet/log"

	apperr "github.com/matzehuels/ringtower/pkg/errors"
	"github.com/matzehuels/ringtower/pkg/paint"
	"github.com/matzehuels/ringtower/pkg/ring"
)

// DefaultFactor is the base color of primitives without a painted color:
// [paint.Neutral], gamma-encoded like painted colors.
var DefaultFactor = func() [4]float64 {
	g := paint.Neutral.Gamma()
	return [4]float64{g[0], g[1], g[2], 1}
}()

// PatchResult is the output of a successful patch.
type PatchResult struct {
	Buffer     []byte
	Primitives int
	Customized int
	Warnings   []Warning
}

// Patcher rewrites containers for export.
type Patcher struct {
	Logger *log.Logger
}

// NewPatcher returns a Patcher that logs to logger. A nil logger discards.
func NewPatcher(logger *log.Logger) *Patcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Patcher{Logger: logger}
}

// Patch is [Patcher.Patch] without logging.
func Patch(buf []byte, colors map[string]paint.Color, snap ring.Snapshot) (*PatchResult, error) {
	return NewPatcher(nil).Patch(buf, colors, snap)
}

// Patch embeds snap into the asset extras of buf under [ring.SnapshotKey]
// and replaces every material. Each primitive gets a material of its own,
// colored from colors when its mesh name matches (both normalized with
// [NormalizeName]) and [DefaultFactor] otherwise.
//
// On failure no buffer is returned and buf is left untouched.
func (p *Patcher) Patch(buf []byte, colors map[string]paint.Color, snap ring.Snapshot) (*PatchResult, error) {
	c, err := Parse(buf)
	if err != nil {
		return nil, err
	}
	for _, w := range c.Warnings {
		p.Logger.Warn("container truncated", "declared", w.Declared, "available", w.Available)
	}

	doc, err := c.Document()
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeContainerFormat, err, "invalid container document")
	}

	tree, err := snap.Tree()
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "encode ring snapshot")
	}
	doc.SetExtra(ring.SnapshotKey, tree)

	byName := make(map[string]paint.Color, len(colors))
	for name, col := range colors {
		byName[NormalizeName(name)] = col
	}

	res := &PatchResult{Warnings: c.Warnings}
	doc.Materials = doc.Materials[:0]
	names := doc.MeshNames()
	for mi := range doc.Meshes {
		name := NormalizeName(names[mi])
		for pi := range doc.Meshes[mi].Primitives {
			factor := DefaultFactor
			if col, ok := byName[name]; ok && name != "" {
				g := col.Gamma()
				factor = [4]float64{g[0], g[1], g[2], 1}
				res.Customized++
			}
			idx := len(doc.Materials)
			doc.Materials = append(doc.Materials, Material{
				Name: name,
				PBR:  &PBR{BaseColorFactor: factor},
			})
			doc.Meshes[mi].Primitives[pi].Material = &idx
			res.Primitives++
		}
	}

	text, err := json.Marshal(doc)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "encode container document")
	}

	var bin []byte
	if c.HasBIN {
		bin = append([]byte{}, c.BIN...)
	}
	res.Buffer = Encode(text, bin)

	p.Logger.Debug("patched container",
		"primitives", res.Primitives,
		"customized", res.Customized,
		"bytes", len(res.Buffer))
	return res, nil
}

// ExtractSnapshot reads the ring snapshot embedded by [Patch]. ok is false
// when buf is a valid container without a usable snapshot.
func ExtractSnapshot(buf []byte) (set ring.Set, ok bool, err error) {
	c, err := Parse(buf)
	if err != nil {
		return ring.Set{}, false, err
	}
	doc, err := c.Document()
	if err != nil {
		return ring.Set{}, false, apperr.Wrap(apperr.ErrCodeContainerFormat, err, "invalid container document")
	}
	v, found := doc.Extra(ring.SnapshotKey)
	if !found {
		return ring.Set{}, false, nil
	}
	set, ok = ring.DecodeSnapshot(v)
	return set, ok, nil
}
