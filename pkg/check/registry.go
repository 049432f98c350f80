package check

import (
	"slices"
	"sync"
)

// Factory creates a fresh check instance for one run.
type Factory func() Check

// Registry holds the factories of every known check, keyed by code.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	metas     map[string]Meta
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		metas:     make(map[string]Meta),
	}
}

// Register adds a check. The factory is called once to read the check's
// Meta. A later registration with the same code replaces the earlier one.
func (r *Registry) Register(factory Factory) {
	meta := factory().Meta()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[meta.Code] = factory
	r.metas[meta.Code] = meta
}

// Meta returns the description of the check with code.
func (r *Registry) Meta(code string) (Meta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.metas[code]
	return meta, ok
}

// Codes returns every registered code in sorted order.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make([]string, 0, len(r.metas))
	for code := range r.metas {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Metas returns every check description sorted by code.
func (r *Registry) Metas() []Meta {
	codes := r.Codes()

	r.mu.RLock()
	defer r.mu.RUnlock()
	metas := make([]Meta, 0, len(codes))
	for _, code := range codes {
		metas = append(metas, r.metas[code])
	}
	return metas
}

// Instantiate creates fresh instances, sorted by code, of the checks for
// which enabled returns true. A nil enabled selects every check.
func (r *Registry) Instantiate(enabled func(Meta) bool) []Check {
	codes := r.Codes()

	r.mu.RLock()
	defer r.mu.RUnlock()
	checks := make([]Check, 0, len(codes))
	for _, code := range codes {
		if enabled != nil && !enabled(r.metas[code]) {
			continue
		}
		checks = append(checks, r.factories[code]())
	}
	return checks
}

// DefaultRegistry is the global registry for built-in checks.
//
//nolint:gochecknoglobals // Global registry is intentional for check registration
var DefaultRegistry = NewRegistry()
