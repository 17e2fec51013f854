package capability

import (
	"github.com/wippyai/wasm-capabilities/linker"
)

// Builder collects capability providers during startup configuration.
// It is append-only and single-use: Build finalizes it into a Registry.
// Not safe for concurrent use.
type Builder struct {
	providers []boxedProvider
	built     bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add registers a provider, wiring its interface into lk, and returns the
// typed handle for its per-instance state slot. Slot indices are assigned
// sequentially in registration order.
//
// If the linker rejects the wiring the error is returned unchanged; the
// reserved slot index stays unused, which is harmless.
func Add[State any](b *Builder, lk *linker.Linker, p Provider[State]) (Handle[State], error) {
	if b.built {
		panic("capability: Add called after Build")
	}

	idx := len(b.providers)
	b.providers = append(b.providers, providerBox[State]{p: p})

	get := func(s *Store) *State {
		return s.getOrInsert(idx).(*State)
	}
	if err := p.Link(lk, get); err != nil {
		return Handle[State]{}, err
	}

	return Handle[State]{idx: idx}, nil
}

// Build finalizes the builder into an immutable Registry. The builder is
// consumed: any later Add panics.
func (b *Builder) Build() *Registry {
	if b.built {
		panic("capability: Build called twice")
	}
	b.built = true

	providers := b.providers
	b.providers = nil
	return &Registry{providers: providers}
}
