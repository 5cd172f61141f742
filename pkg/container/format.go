package container

import (
	"encoding/binary"
	"errors"
	"fmt"

	apperr "github.com/matzehuels/ringtower/pkg/errors"
)

// Container layout constants.
const (
	Magic           uint32 = 0x46546C67 // "glTF"
	Version         uint32 = 2
	HeaderSize             = 12
	ChunkHeaderSize        = 8

	ChunkJSON uint32 = 0x4E4F534A // "JSON"
	ChunkBIN  uint32 = 0x004E4942 // "BIN\0"
)

// Reason enumerates why a buffer is not a usable container.
type Reason string

const (
	BadMagic          Reason = "BadMagic"
	MissingTextChunk  Reason = "MissingTextChunk"
	ChunkOverrun      Reason = "ChunkOverrun"
	BufferUnavailable Reason = "BufferUnavailable"
)

// FormatError is a hard container failure. It is always returned wrapped in
// an *errors.Error with code CONTAINER_FORMAT.
type FormatError struct {
	Reason Reason
	Detail string
}

func (e *FormatError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func formatError(reason Reason, format string, args ...any) error {
	fe := &FormatError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
	return apperr.Wrap(apperr.ErrCodeContainerFormat, fe, "invalid container")
}

// ReasonOf extracts the failure reason from err.
func ReasonOf(err error) (Reason, bool) {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe.Reason, true
	}
	return "", false
}

// Warning is a recoverable problem found while reading a container.
type Warning struct {
	Code      apperr.Code `json:"code"`
	Message   string      `json:"message"`
	Declared  int         `json:"declared"`
	Available int         `json:"available"`
}

func (w Warning) String() string { return fmt.Sprintf("%s: %s", w.Code, w.Message) }

// Header is the fixed 12-byte container header.
type Header struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

// Container is a parsed buffer. JSON and BIN alias the source buffer.
type Container struct {
	Header   Header
	JSON     []byte
	BIN      []byte
	HasBIN   bool
	Warnings []Warning
}

// Parse validates buf and splits it into its chunks.
func Parse(buf []byte) (*Container, error) {
	if len(buf) == 0 {
		return nil, formatError(BufferUnavailable, "no source buffer")
	}
	if len(buf) < HeaderSize {
		return nil, formatError(BadMagic, "buffer is %d bytes, shorter than the %d-byte header", len(buf), HeaderSize)
	}

	le := binary.LittleEndian
	c := &Container{Header: Header{
		Magic:   le.Uint32(buf[0:4]),
		Version: le.Uint32(buf[4:8]),
		Length:  le.Uint32(buf[8:12]),
	}}
	if c.Header.Magic != Magic {
		return nil, formatError(BadMagic, "magic 0x%08x", c.Header.Magic)
	}

	rest := buf[HeaderSize:]
	if len(rest) < ChunkHeaderSize {
		return nil, formatError(MissingTextChunk, "no chunk after header")
	}
	length, typ := le.Uint32(rest[0:4]), le.Uint32(rest[4:8])
	if typ != ChunkJSON {
		return nil, formatError(MissingTextChunk, "first chunk has type 0x%08x", typ)
	}
	rest = rest[ChunkHeaderSize:]
	if uint64(length) > uint64(len(rest)) {
		return nil, formatError(ChunkOverrun, "text chunk declares %d bytes, %d available", length, len(rest))
	}
	c.JSON = rest[:length]
	rest = rest[length:]

	if len(rest) < ChunkHeaderSize {
		return c, nil
	}
	length, typ = le.Uint32(rest[0:4]), le.Uint32(rest[4:8])
	if typ != ChunkBIN {
		return c, nil
	}
	rest = rest[ChunkHeaderSize:]
	if uint64(length) > uint64(len(rest)) {
		c.Warnings = append(c.Warnings, Warning{
			Code:      apperr.ErrCodeContainerTruncation,
			Message:   fmt.Sprintf("binary chunk declares %d bytes, clipped to %d", length, len(rest)),
			Declared:  int(length),
			Available: len(rest),
		})
		length = uint32(len(rest))
	}
	c.BIN = rest[:length]
	c.HasBIN = true
	return c, nil
}

// Encode assembles a container from a JSON document and an optional blob.
// A nil bin omits the BIN chunk.
func Encode(doc, bin []byte) []byte {
	jsonLen := padded(len(doc))
	total := HeaderSize + ChunkHeaderSize + jsonLen
	if bin != nil {
		total += ChunkHeaderSize + padded(len(bin))
	}

	out := make([]byte, 0, total)
	le := binary.LittleEndian
	out = le.AppendUint32(out, Magic)
	out = le.AppendUint32(out, Version)
	out = le.AppendUint32(out, uint32(total))

	out = le.AppendUint32(out, uint32(jsonLen))
	out = le.AppendUint32(out, ChunkJSON)
	out = append(out, doc...)
	out = pad(out, len(doc), ' ')

	if bin != nil {
		out = le.AppendUint32(out, uint32(padded(len(bin))))
		out = le.AppendUint32(out, ChunkBIN)
		out = append(out, bin...)
		out = pad(out, len(bin), 0)
	}
	return out
}

func padded(n int) int { return (n + 3) &^ 3 }

func pad(out []byte, n int, fill byte) []byte {
	for range padded(n) - n {
		out = append(out, fill)
	}
	return out
}
