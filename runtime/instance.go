package runtime

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-capabilities/capability"
	"github.com/wippyai/wasm-capabilities/errors"
)

// Instance is a running guest with its own capability store. NOT safe for
// concurrent use; drive each instance from one goroutine or synchronize
// externally.
type Instance struct {
	module api.Module
	store  *capability.Store
}

// Store returns the instance's capability store. Handles issued by the
// runtime's registry resolve per-instance state here.
func (i *Instance) Store() *capability.Store {
	return i.store
}

// Module returns the underlying wazero module, for memory access.
func (i *Instance) Module() api.Module {
	return i.module
}

// Call invokes an exported function with raw stack values. The instance's
// store rides on the context so host functions reached during the call see
// this instance's state.
func (i *Instance) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseCall, "exported function", name)
	}

	ctx = capability.WithStore(ctx, i.store)
	results, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, errors.New(errors.PhaseCall, errors.KindInvalidInput).
			Path(name).
			Detail("guest call failed").
			Cause(err).
			Build()
	}
	return results, nil
}

// Close tears the instance down. Its store is discarded with it.
func (i *Instance) Close(ctx context.Context) error {
	return i.module.Close(ctx)
}
