package ring

import (
	"bytes"
	"encoding/json"
)

// SnapshotKey is the namespaced key under which a snapshot is embedded in a
// container document's extras.
const SnapshotKey = "ringtower:rings"

// Snapshot is the value-only serialization of a [Set]: one entry per ring,
// in order. It marshals to a JSON array.
type Snapshot []Ring

// ToSnapshot copies every ring of s into a snapshot.
func ToSnapshot(s Set) Snapshot {
	return append(Snapshot{}, s.Rings...)
}

// Set rebuilds a solved and cascaded set from the snapshot entries.
func (snap Snapshot) Set() Set {
	s := Set{Rings: append([]Ring(nil), snap...)}
	s.Normalize()
	return s
}

// FromSnapshot reconstructs a set from a JSON snapshot document. Each entry
// is merged onto [Default], so missing fields keep their defaults and unknown
// fields are ignored. The result is solved and cascaded.
//
// An empty or malformed document yields ok == false; callers keep their
// previous state in that case.
func FromSnapshot(doc []byte) (s Set, ok bool) {
	doc = bytes.TrimSpace(doc)
	if len(doc) == 0 {
		return Set{}, false
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(doc, &entries); err != nil || len(entries) == 0 {
		return Set{}, false
	}

	rings := make([]Ring, 0, len(entries))
	for _, raw := range entries {
		r := Default()
		if err := json.Unmarshal(raw, &r); err != nil {
			return Set{}, false
		}
		rings = append(rings, r)
	}
	s = Set{Rings: rings}
	s.Normalize()
	return s, true
}

// DecodeSnapshot is [FromSnapshot] for an already-decoded document tree,
// such as the extras of a parsed container.
func DecodeSnapshot(v any) (Set, bool) {
	if v == nil {
		return Set{}, false
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Set{}, false
	}
	return FromSnapshot(data)
}

// Tree converts the snapshot into a generic JSON tree suitable for embedding
// into another document.
func (snap Snapshot) Tree() ([]any, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	var tree []any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}
