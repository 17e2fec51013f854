package capability

// Registry is the finalized, immutable set of registered providers. It is
// never mutated after Build and is safe to share across any number of
// concurrent instance creations.
type Registry struct {
	providers []boxedProvider
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	return len(r.providers)
}

// NewStore allocates a fresh per-instance store with one empty slot per
// registered provider. Slot i corresponds to the provider registered at
// index i; that correspondence never changes.
func (r *Registry) NewStore() *Store {
	return &Store{
		slots:     make([]any, len(r.providers)),
		providers: r.providers,
	}
}
