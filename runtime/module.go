package runtime

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-capabilities/capability"
	"github.com/wippyai/wasm-capabilities/errors"
)

// Module is a compiled guest module. Safe for concurrent use; Instantiate
// may be called from multiple goroutines.
type Module struct {
	runtime  *Runtime
	compiled wazero.CompiledModule
}

// Name returns the module's declared name, if any.
func (m *Module) Name() string {
	return m.compiled.Name()
}

// ExportedFunctions lists the names of the module's exported functions.
func (m *Module) ExportedFunctions() []string {
	defs := m.compiled.ExportedFunctions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	return names
}

// FunctionDefinitions returns the exported function definitions keyed by
// export name, for signature inspection.
func (m *Module) FunctionDefinitions() map[string]api.FunctionDefinition {
	return m.compiled.ExportedFunctions()
}

// Instantiate creates a running instance with its own capability store.
// The store is attached to the context for the duration of the start
// function so imports called during initialization already see it.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	store := m.runtime.Registry().NewStore()
	ctx = capability.WithStore(ctx, store)

	cfg := wazero.NewModuleConfig().WithName("")
	mod, err := m.runtime.engine.Runtime().InstantiateModule(ctx, m.compiled, cfg)
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	return &Instance{module: mod, store: store}, nil
}

// Close releases the compiled module.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}
