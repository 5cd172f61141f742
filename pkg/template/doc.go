// Package template loads and decodes the module template: the single piece
// of geometry that every ring instance reuses.
//
// A [Loader] holds one source at a time, either a local file or an http(s)
// URL. The template is decoded lazily on first use and cached; pointing the
// loader at a new source or buffer drops the cached geometry. Downloads go
// through [httputil.Retry] and are stored in a [cache.Cache] keyed by URL.
//
// [Decode] accepts binary glTF (sniffed with filetype) and plain JSON glTF
// without external buffers. Anything else fails with a DECODE error.
package template
