package capability

import (
	"github.com/wippyai/wasm-capabilities/linker"
)

// Provider is implemented by each host capability exposed to sandboxed
// guests. State is the provider's per-instance runtime data: every guest
// instance gets its own State value, created lazily on first access.
type Provider[State any] interface {
	// Link wires the provider's guest-visible interface into lk. The get
	// accessor yields this provider's State for whichever instance's Store
	// is current when a guest call occurs.
	Link(lk *linker.Linker, get Accessor[State]) error

	// DefaultState produces the initial per-instance State value.
	DefaultState() State
}

// Accessor resolves a provider's per-instance State within a Store,
// creating it from DefaultState on first use.
type Accessor[State any] func(*Store) *State

// Shared adapts a provider so one value can be registered into multiple
// builders. Both operations delegate to the referent.
func Shared[State any](p Provider[State]) Provider[State] {
	return sharedProvider[State]{p: p}
}

type sharedProvider[State any] struct {
	p Provider[State]
}

func (s sharedProvider[State]) Link(lk *linker.Linker, get Accessor[State]) error {
	return s.p.Link(lk, get)
}

func (s sharedProvider[State]) DefaultState() State {
	return s.p.DefaultState()
}

// boxedProvider is the type-erased form a registered provider is stored in.
type boxedProvider interface {
	// defaultStateBox returns a freshly built *State boxed as any.
	defaultStateBox() any
}

type providerBox[State any] struct {
	p Provider[State]
}

func (b providerBox[State]) defaultStateBox() any {
	s := b.p.DefaultState()
	return &s
}
