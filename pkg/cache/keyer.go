package cache

// Keyer builds cache keys.
type Keyer interface {
	// TemplateKey is the key of a downloaded module template.
	TemplateKey(source string) string

	// ExportKey is the key of a patched export, derived from the template
	// content hash and everything that influences the patch.
	ExportKey(templateHash string, opts ExportKeyOpts) string
}

// ExportKeyOpts are the inputs of an export besides the template.
type ExportKeyOpts struct {
	Snapshot []byte `json:"snapshot"`
	Colors   []byte `json:"colors"`
}

// DefaultKeyer is the unscoped [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) TemplateKey(source string) string {
	return hashKey("template", source)
}

func (DefaultKeyer) ExportKey(templateHash string, opts ExportKeyOpts) string {
	return hashKey("export", templateHash, Hash(opts.Snapshot), Hash(opts.Colors))
}
