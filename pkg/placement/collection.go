package placement

import (
	"sync"

	"github.com/matzehuels/ringtower/pkg/paint"
)

// Resource is a renderer-side handle bound to one instance.
type Resource interface {
	Release()
}

// Binder creates the resource backing an instance. It may return nil when
// the instance needs none.
type Binder func(Instance) Resource

// Collection owns the live instance set. It is safe for concurrent use.
type Collection struct {
	mu        sync.RWMutex
	bind      Binder
	items     []Instance
	resources []Resource
	gen       uint64
}

// NewCollection returns an empty collection. bind may be nil.
func NewCollection(bind Binder) *Collection {
	return &Collection{bind: bind}
}

// Replace releases every resource of the current set, then binds and
// publishes items. It returns the new generation number.
func (c *Collection) Replace(items []Instance) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.releaseLocked()

	c.items = items
	if c.bind != nil {
		c.resources = make([]Resource, len(items))
		for i, inst := range items {
			c.resources[i] = c.bind(inst)
		}
	}
	c.gen++
	return c.gen
}

// Release frees every resource and empties the collection.
func (c *Collection) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseLocked()
	c.items = nil
}

func (c *Collection) releaseLocked() {
	for _, r := range c.resources {
		if r != nil {
			r.Release()
		}
	}
	c.resources = nil
}

// Instances returns a copy of the live set.
func (c *Collection) Instances() []Instance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Instance(nil), c.items...)
}

// Len returns the number of live instances.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Generation counts calls to Replace.
func (c *Collection) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// Paint sets the color of the live instances addressed by keys. Locked
// instances are skipped. It returns the number of instances changed.
func (c *Collection) Paint(col paint.Color, keys ...paint.Key) int {
	want := make(map[paint.Key]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for i := range c.items {
		if _, ok := want[c.items[i].Key]; !ok || !c.items[i].Paintable() {
			continue
		}
		c.items[i].Color = col.Clamped()
		n++
	}
	return n
}
