package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each build or workspace
// its own namespace in a shared cache.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), buildinfo.Version+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer falls back
// to [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) TemplateKey(source string) string {
	return k.prefix + k.inner.TemplateKey(source)
}

func (k *ScopedKeyer) ExportKey(templateHash string, opts ExportKeyOpts) string {
	return k.prefix + k.inner.ExportKey(templateHash, opts)
}
