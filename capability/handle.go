package capability

// Handle identifies one registered provider's storage slot. It is copyable
// and carries the provider's State type at compile time; it is only valid
// with stores created by the registry that issued it.
type Handle[State any] struct {
	idx int
}

// Index returns the slot index assigned at registration time.
func (h Handle[State]) Index() int {
	return h.idx
}

// Erase drops the type tag, keeping only the slot index. The conversion is
// one-way: code holding an AnyHandle must already know the slot's State type.
func (h Handle[State]) Erase() AnyHandle {
	return AnyHandle{idx: h.idx}
}

// AnyHandle is the type-erased form of a Handle, for call sites that
// dispatch across heterogeneous providers.
type AnyHandle struct {
	idx int
}

// Index returns the slot index.
func (h AnyHandle) Index() int {
	return h.idx
}
