package capability

// Store holds one guest instance's per-provider state. Each slot boxes a
// *State for the provider at the same registry index, filled lazily from
// DefaultState on first access.
//
// A Store is owned exclusively by its instance and is not safe for
// concurrent use. Indexing with a handle from a different registry is a
// pairing bug in the embedding code and panics rather than returning an
// error.
type Store struct {
	slots     []any
	providers []boxedProvider
}

// Len returns the number of slots.
func (s *Store) Len() int {
	return len(s.slots)
}

// Set overwrites the state in h's slot, replacing any lazily-initialized
// default. Other slots are unaffected.
func Set[State any](s *Store, h Handle[State], v State) {
	s.slots[h.idx] = &v
}

// GetOrInsert returns h's per-instance state, initializing the slot from
// the provider's DefaultState if it is still empty. The returned pointer
// aliases the slot: mutations persist for the life of the store.
func GetOrInsert[State any](s *Store, h Handle[State]) *State {
	return s.getOrInsert(h.idx).(*State)
}

// GetOrInsertAny is GetOrInsert for type-erased handles. The result boxes
// a *State for the slot's provider; the caller must know which State type
// that is.
func (s *Store) GetOrInsertAny(h AnyHandle) any {
	return s.getOrInsert(h.idx)
}

func (s *Store) getOrInsert(idx int) any {
	if s.slots[idx] == nil {
		s.slots[idx] = s.providers[idx].defaultStateBox()
	}
	return s.slots[idx]
}
