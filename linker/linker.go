package linker

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-capabilities/errors"
)

// Options configures linker behavior.
type Options struct {
	// SemverMatching lets an import at X.Y.Z resolve against a namespace
	// registered at a compatible newer version.
	SemverMatching bool
}

// DefaultOptions returns default linker configuration.
func DefaultOptions() Options {
	return Options{
		SemverMatching: true,
	}
}

// Linker collects host function definitions grouped by namespace and
// materializes them as wazero host modules. Thread-safe.
type Linker struct {
	runtime     wazero.Runtime
	namespaces  map[string]*Namespace // keyed by unversioned name
	order       []string
	hostModules map[string]api.Module
	options     Options
	logger      *zap.Logger
	mu          sync.RWMutex
}

// New creates a Linker over the given wazero runtime.
func New(rt wazero.Runtime, opts Options) *Linker {
	return &Linker{
		runtime:     rt,
		namespaces:  make(map[string]*Namespace),
		hostModules: make(map[string]api.Module),
		options:     opts,
		logger:      zap.NewNop(),
	}
}

// NewWithDefaults creates a Linker with default options.
func NewWithDefaults(rt wazero.Runtime) *Linker {
	return New(rt, DefaultOptions())
}

// SetLogger installs a logger for registration and instantiation events.
func (l *Linker) SetLogger(logger *zap.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if logger != nil {
		l.logger = logger
	}
}

// Options returns the configuration.
func (l *Linker) Options() Options {
	return l.options
}

// Runtime returns the wazero runtime.
func (l *Linker) Runtime() wazero.Runtime {
	return l.runtime
}

// Namespace returns or creates the namespace for a versioned path like
// "wippy:caps/kv@0.1.0". Re-requesting an existing namespace with a
// different version keeps the original version.
func (l *Linker) Namespace(path string) *Namespace {
	name, version, ok := splitPath(path)
	if !ok {
		name = path
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if ns, exists := l.namespaces[name]; exists {
		return ns
	}

	ns := newNamespace(name, version)
	l.namespaces[name] = ns
	l.order = append(l.order, name)
	return ns
}

// DefineFunc defines a function at a full path like
// "wippy:caps/kv@0.1.0#get".
func (l *Linker) DefineFunc(path string, fn api.GoModuleFunc, params, results []api.ValueType) error {
	nsPath, funcName, ok := splitFuncPath(path)
	if !ok {
		return errors.InvalidInput(errors.PhaseLink, "malformed function path "+path)
	}
	return l.Namespace(nsPath).DefineFunc(funcName, fn, params, results)
}

// Resolve looks up a function by full path, applying semver matching when
// enabled. It returns nil if nothing matches.
func (l *Linker) Resolve(path string) *FuncDef {
	nsPath, funcName, ok := splitFuncPath(path)
	if !ok {
		return nil
	}
	name, version, ok := splitPath(nsPath)
	if !ok {
		return nil
	}

	l.mu.RLock()
	ns := l.namespaces[name]
	l.mu.RUnlock()
	if ns == nil {
		return nil
	}

	if version != nil && ns.Version() != nil {
		if *ns.Version() != *version {
			if !l.options.SemverMatching || !ns.Version().Compatible(*version) {
				return nil
			}
		}
	}

	return ns.Func(funcName)
}

// Namespaces returns all namespaces in registration order.
func (l *Linker) Namespaces() []*Namespace {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Namespace, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.namespaces[name])
	}
	return out
}

// InstantiateHostModules materializes every namespace as a wazero host
// module so guest imports can bind against them. Call once, after all
// capabilities are registered and before the first guest instantiation.
func (l *Linker) InstantiateHostModules(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, name := range l.order {
		ns := l.namespaces[name]
		path := ns.FullPath()
		if _, done := l.hostModules[path]; done {
			continue
		}

		builder := l.runtime.NewHostModuleBuilder(path)
		for _, fnName := range ns.FuncNames() {
			def := ns.Func(fnName)
			builder.NewFunctionBuilder().
				WithGoModuleFunction(def.Handler, def.ParamTypes, def.ResultTypes).
				Export(def.Name)
		}

		mod, err := builder.Instantiate(ctx)
		if err != nil {
			return errors.New(errors.PhaseLink, errors.KindInstantiation).
				Path(path).
				Detail("instantiate host module").
				Cause(err).
				Build()
		}
		l.hostModules[path] = mod

		l.logger.Debug("instantiated host module",
			zap.String("namespace", path),
			zap.Int("functions", len(ns.FuncNames())),
		)
	}

	return nil
}

// HostModule returns the instantiated host module for a versioned
// namespace path, or nil before InstantiateHostModules.
func (l *Linker) HostModule(path string) api.Module {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hostModules[path]
}
