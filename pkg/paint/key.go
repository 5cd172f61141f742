package paint

import (
	"fmt"
	"strconv"
	"strings"
)

// Key is the structural address of one generated instance.
type Key struct {
	Ring   int `json:"ring"`
	Layer  int `json:"layer"`
	Module int `json:"module"`
}

// Name returns the scene name of the instance, e.g. "ring-0.layer-3.module-7".
// Exported assets use it as the mesh name, so it is the link between a paint
// key and a primitive in a container document.
func (k Key) Name() string {
	return fmt.Sprintf("ring-%d.layer-%d.module-%d", k.Ring, k.Layer, k.Module)
}

func (k Key) String() string { return k.Name() }

// MarshalText encodes the key by name so it can be used as a JSON object key.
func (k Key) MarshalText() ([]byte, error) { return []byte(k.Name()), nil }

// UnmarshalText parses a name produced by [Key.Name].
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKey parses "ring-R.layer-L.module-M".
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Key{}, fmt.Errorf("invalid instance key %q", s)
	}
	var vals [3]int
	for i, prefix := range [3]string{"ring-", "layer-", "module-"} {
		num, ok := strings.CutPrefix(parts[i], prefix)
		if !ok {
			return Key{}, fmt.Errorf("invalid instance key %q: expected %q", s, prefix)
		}
		n, err := strconv.Atoi(num)
		if err != nil || n < 0 {
			return Key{}, fmt.Errorf("invalid instance key %q: bad index %q", s, num)
		}
		vals[i] = n
	}
	return Key{Ring: vals[0], Layer: vals[1], Module: vals[2]}, nil
}
