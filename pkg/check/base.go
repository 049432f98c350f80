package check

// Base implements Check from a fixed Meta. Embed it in check
// implementations.
type Base struct {
	meta Meta
}

// NewBase creates a Base describing a check.
func NewBase(meta Meta) Base {
	return Base{meta: meta}
}

// Meta returns the check description.
func (b *Base) Meta() Meta {
	return b.meta
}
