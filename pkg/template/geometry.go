package template

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"

	"github.com/matzehuels/ringtower/pkg/cache"
	"github.com/matzehuels/ringtower/pkg/container"
	apperr "github.com/matzehuels/ringtower/pkg/errors"
)

// GLB is the filetype registered for binary glTF buffers.
var GLB = filetype.NewType("glb", "model/gltf-binary")

func init() {
	filetype.AddMatcher(GLB, func(buf []byte) bool {
		return len(buf) >= 4 && bytes.Equal(buf[:4], []byte("glTF"))
	})
}

// Geometry is a decoded module template. It is immutable once decoded.
type Geometry struct {
	Name     string
	Hash     string
	Document *container.Document
	BIN      []byte
	Warnings []container.Warning
}

// Primitives returns the number of primitives in the template.
func (g *Geometry) Primitives() int { return g.Document.PrimitiveCount() }

// DecodeError explains why a buffer is not a usable template.
type DecodeError struct {
	Kind   string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Kind == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func decodeError(name, kind, format string, args ...any) error {
	de := &DecodeError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
	return apperr.Wrap(apperr.ErrCodeDecode, de, "decode template %s", name)
}

// Decode parses buf into a template. name is used in errors only.
func Decode(name string, buf []byte) (*Geometry, error) {
	if len(buf) == 0 {
		return nil, decodeError(name, "", "empty buffer")
	}

	kind, _ := filetype.Match(buf)
	g := &Geometry{Name: name, Hash: cache.Hash(buf)}
	switch {
	case kind == GLB:
		c, err := container.Parse(buf)
		if err != nil {
			reason, _ := container.ReasonOf(err)
			return nil, decodeError(name, GLB.MIME.Value, "%s", reason)
		}
		doc, err := c.Document()
		if err != nil {
			return nil, decodeError(name, GLB.MIME.Value, "%v", err)
		}
		g.Document, g.BIN, g.Warnings = doc, c.BIN, c.Warnings
	case kind == types.Unknown && looksLikeJSON(buf):
		var doc container.Document
		if err := json.Unmarshal(buf, &doc); err != nil {
			return nil, decodeError(name, "model/gltf+json", "%v", err)
		}
		for _, b := range doc.Buffers {
			if b.URI != "" {
				return nil, decodeError(name, "model/gltf+json", "external buffer %q is not supported", b.URI)
			}
		}
		g.Document = &doc
	default:
		mime := kind.MIME.Value
		if mime == "" {
			mime = "unknown"
		}
		return nil, decodeError(name, mime, "not a glTF module template")
	}

	if g.Document.PrimitiveCount() == 0 {
		return nil, decodeError(name, "", "template has no mesh primitives")
	}
	return g, nil
}

func looksLikeJSON(buf []byte) bool {
	buf = bytes.TrimSpace(buf)
	return len(buf) > 0 && buf[0] == '{'
}
