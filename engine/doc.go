// Package engine wraps the wazero runtime shared by compiled modules and
// their instances, and hosts the library-wide zap logger.
//
// The engine owns no capability state of its own: capability registration
// lives in the linker, per-instance state in capability.Store.
package engine
