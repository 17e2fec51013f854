package runtime

import (
	"context"
	"sync"

	"github.com/wippyai/wasm-capabilities/capability"
	"github.com/wippyai/wasm-capabilities/engine"
	"github.com/wippyai/wasm-capabilities/errors"
	"github.com/wippyai/wasm-capabilities/linker"
)

// Runtime owns the engine, the capability linker, and the capability
// registry shared by all modules it loads.
//
// Capabilities are added first, then modules are loaded; the first Load
// finalizes the registry and no further capabilities can be added.
type Runtime struct {
	engine   *engine.WazeroEngine
	linker   *linker.Linker
	builder  *capability.Builder
	registry *capability.Registry
	mu       sync.Mutex
}

// New creates a runtime with default engine configuration.
func New(ctx context.Context) (*Runtime, error) {
	return NewWithConfig(ctx, nil)
}

// NewWithConfig creates a runtime with custom engine configuration.
func NewWithConfig(ctx context.Context, cfg *engine.Config) (*Runtime, error) {
	eng, err := engine.NewWazeroEngineWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Load("create engine", err)
	}

	lk := linker.NewWithDefaults(eng.Runtime())
	lk.SetLogger(engine.Logger())

	return &Runtime{
		engine:  eng,
		linker:  lk,
		builder: capability.NewBuilder(),
	}, nil
}

// AddCapability registers a capability provider, wiring its guest interface
// into the runtime's linker. Must be called before the first Load.
func AddCapability[State any](r *Runtime, p capability.Provider[State]) (capability.Handle[State], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.registry != nil {
		return capability.Handle[State]{}, errors.InvalidInput(errors.PhaseRegister,
			"capabilities must be registered before loading modules")
	}
	return capability.Add(r.builder, r.linker, p)
}

// Linker returns the capability linker, for providers registered outside
// AddCapability or for inspection.
func (r *Runtime) Linker() *linker.Linker {
	return r.linker
}

// Registry returns the finalized capability registry, or nil before the
// first Load.
func (r *Runtime) Registry() *capability.Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registry
}

// Load compiles a core WASM binary for instantiation. The first Load
// finalizes capability registration and materializes the host modules.
func (r *Runtime) Load(ctx context.Context, wasmBytes []byte) (*Module, error) {
	if err := r.finalize(ctx); err != nil {
		return nil, err
	}

	compiled, err := r.engine.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, err
	}

	return &Module{runtime: r, compiled: compiled}, nil
}

func (r *Runtime) finalize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.registry != nil {
		return nil
	}
	if err := r.linker.InstantiateHostModules(ctx); err != nil {
		return err
	}
	r.registry = r.builder.Build()
	r.builder = nil
	return nil
}

// Close releases the engine and everything instantiated in it.
// All instances must be closed first.
func (r *Runtime) Close(ctx context.Context) error {
	return r.engine.Close(ctx)
}
