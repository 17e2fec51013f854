// Package linker exposes host capability interfaces to sandboxed guests.
//
// Capability providers define functions inside versioned namespaces
// ("wippy:caps/kv@0.1.0"); a namespace becomes one wazero host module when
// InstantiateHostModules runs. Defining the same function name twice in a
// namespace is rejected, which is how capability registration surfaces
// guest-visible name collisions.
//
// Host functions reach their per-instance state through capability.Store:
// the runtime attaches the current instance's store to the context before
// every guest entry, and the accessor captured at registration time reads
// it back.
//
// # Thread Safety
//
// Linker and Namespace are safe for concurrent use.
package linker
