// Package capability implements a type-safe heterogeneous registry for host
// capabilities exposed to sandboxed guests.
//
// Providers with unrelated State types are registered into one Builder; each
// registration wires the provider's guest interface into the linker and
// returns a typed Handle. Build finalizes the set into an immutable Registry
// shared by all instances, and Registry.NewStore gives every instance its own
// lazily-initialized state slots.
//
//	b := capability.NewBuilder()
//	kvHandle, err := capability.Add(b, lk, kv.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	registry := b.Build()
//
//	store := registry.NewStore() // one per instance
//	state := capability.GetOrInsert(store, kvHandle)
//
// Handles are only valid with stores created by the registry that issued
// them. Mixing registries and stores corrupts typed state, so out-of-range
// indices and slot type mismatches panic instead of returning errors.
//
// # Thread Safety
//
// Builder is not safe for concurrent use. Registry is immutable and safe to
// share. Store belongs to a single instance and needs external
// synchronization if that instance is driven from multiple goroutines.
package capability
