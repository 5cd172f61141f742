package placement

import (
	"github.com/matzehuels/ringtower/pkg/paint"
)

// Instance is one generated module.
type Instance struct {
	Key       paint.Key   `json:"key"`
	Name      string      `json:"name"`
	Transform Transform   `json:"transform"`
	Color     paint.Color `json:"color"`
	Visible   bool        `json:"visible"`
	Locked    bool        `json:"locked"`
}

// PaintKey returns the structural key of the instance.
func (i Instance) PaintKey() paint.Key { return i.Key }

// PaintColor returns the current color of the instance.
func (i Instance) PaintColor() paint.Color { return i.Color }

// Paintable reports whether interactive painting may change the instance.
func (i Instance) Paintable() bool { return !i.Locked }
