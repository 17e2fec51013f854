// Package runtime provides the high-level API for running guests with host
// capabilities.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	// Register capabilities before loading modules.
//	kvHandle, err := runtime.AddCapability(rt, kv.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mod, err := rt.Load(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inst, err := mod.Instantiate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close(ctx)
//
//	// Each instance has isolated per-capability state.
//	state := capability.GetOrInsert(inst.Store(), kvHandle)
//
// # Lifecycle
//
// AddCapability is only valid before the first Load: loading finalizes the
// capability registry and materializes the linker's host modules. Every
// Instantiate gets a fresh capability store; closing the instance discards
// it.
//
// # Thread Safety
//
// Runtime and Module are safe for concurrent use. Instance is NOT
// thread-safe.
package runtime
