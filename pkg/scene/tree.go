package scene

import (
	"github.com/matzehuels/ringtower/pkg/paint"
	"github.com/matzehuels/ringtower/pkg/placement"
	"github.com/matzehuels/ringtower/pkg/ring"
)

// Tree is the scene handed to a [Renderer]: rings in stacking order, each
// with its instances.
type Tree struct {
	Generation uint64     `json:"generation"`
	Rings      []RingNode `json:"rings"`
}

// RingNode is one ring of the tree.
type RingNode struct {
	Index     int                  `json:"index"`
	Ring      ring.Ring            `json:"ring"`
	Instances []placement.Instance `json:"instances"`
}

// NewTree groups insts under the rings of set. Instances whose ring index is
// out of range are dropped.
func NewTree(set ring.Set, insts []placement.Instance) *Tree {
	t := &Tree{Rings: make([]RingNode, len(set.Rings))}
	for i, r := range set.Rings {
		t.Rings[i] = RingNode{Index: i, Ring: r}
	}
	for _, inst := range insts {
		if i := inst.Key.Ring; i >= 0 && i < len(t.Rings) {
			t.Rings[i].Instances = append(t.Rings[i].Instances, inst)
		}
	}
	return t
}

// Instances returns every instance in ring order.
func (t *Tree) Instances() []placement.Instance {
	var out []placement.Instance
	for _, rn := range t.Rings {
		out = append(out, rn.Instances...)
	}
	return out
}

// Len returns the number of instances.
func (t *Tree) Len() int {
	n := 0
	for _, rn := range t.Rings {
		n += len(rn.Instances)
	}
	return n
}

// Colors returns the color of every painted instance keyed by instance name,
// the form [container.Patch] matches primitives against. Instances still at
// [paint.Neutral] are left out and get [container.DefaultFactor].
func Colors(insts []placement.Instance) map[string]paint.Color {
	out := make(map[string]paint.Color, len(insts))
	for _, inst := range insts {
		if inst.Color != paint.Neutral {
			out[inst.Name] = inst.Color
		}
	}
	return out
}
