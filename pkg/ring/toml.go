package ring

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// ringFile is the on-disk TOML layout of a ring set:
//
//	[[ring]]
//	modules = 24
//	arc = 180
//	[ring.fixed]
//	modules = true
//	arc = true
type ringFile struct {
	Rings []toml.Primitive `toml:"ring"`
}

// DecodeTOML parses a TOML ring definition. Every [[ring]] table is decoded
// on top of [Default], then the set is solved and cascaded.
func DecodeTOML(data []byte) (Set, error) {
	var file ringFile
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return Set{}, fmt.Errorf("parse ring file: %w", err)
	}
	if len(file.Rings) == 0 {
		return Set{}, fmt.Errorf("ring file defines no [[ring]] tables")
	}

	s := Set{Rings: make([]Ring, 0, len(file.Rings))}
	for i, prim := range file.Rings {
		r := Default()
		if err := md.PrimitiveDecode(prim, &r); err != nil {
			return Set{}, fmt.Errorf("ring %d: %w", i, err)
		}
		s.Rings = append(s.Rings, r)
	}
	s.Normalize()
	return s, nil
}

// LoadTOML reads and decodes a TOML ring definition file.
func LoadTOML(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read %s: %w", path, err)
	}
	return DecodeTOML(data)
}

// EncodeTOML writes s as a TOML ring definition.
func EncodeTOML(w io.Writer, s Set) error {
	return toml.NewEncoder(w).Encode(s)
}
