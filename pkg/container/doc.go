// Package container reads, rewrites and writes binary scene containers.
//
// A container is a glTF binary (GLB) file:
//
//	header  magic u32 "glTF" | version u32 | totalLength u32
//	chunk   length u32 | type u32 "JSON" | document, padded with 0x20
//	chunk   length u32 | type u32 "BIN\0" | blob, padded with 0x00 (optional)
//
// All integers are little-endian. [Parse] validates the header and the
// mandatory JSON chunk and fails with a [*FormatError] naming the exact
// [Reason]. A BIN chunk that declares more bytes than the buffer holds is
// clipped and reported as a [Warning] instead.
//
// [Patch] is the export step: it embeds the ring snapshot into the document's
// asset extras, rebuilds every material from the painted instance colors and
// re-emits a well-formed container. Instance colors are matched to mesh names
// through [NormalizeName].
package container
