package capability

import "context"

type storeContextKey struct{}

// WithStore returns a context carrying the current instance's store. The
// runtime attaches it before every guest entry so linker-registered host
// functions can reach their per-instance state.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, s)
}

// StoreFromContext returns the store attached by WithStore. Host functions
// are only ever invoked underneath a guest entry, so a missing store is a
// wiring bug in the embedding code and panics.
func StoreFromContext(ctx context.Context) *Store {
	s, ok := ctx.Value(storeContextKey{}).(*Store)
	if !ok {
		panic("capability: no store in context; host function invoked outside a guest call")
	}
	return s
}
