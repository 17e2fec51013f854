package linker

import (
	"context"
	"errors"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	liberrors "github.com/wippyai/wasm-capabilities/errors"
)

var noop = api.GoModuleFunc(func(context.Context, api.Module, []uint64) {})

func newTestLinker(t *testing.T) *Linker {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { _ = rt.Close(ctx) })
	return NewWithDefaults(rt)
}

func TestNamespace_FullPath(t *testing.T) {
	lk := newTestLinker(t)

	ns := lk.Namespace("wippy:caps/kv@0.1.0")
	if ns.Name() != "wippy:caps/kv" {
		t.Fatalf("unexpected name %q", ns.Name())
	}
	if ns.FullPath() != "wippy:caps/kv@0.1.0" {
		t.Fatalf("unexpected full path %q", ns.FullPath())
	}

	// Same unversioned name returns the existing namespace.
	if lk.Namespace("wippy:caps/kv@0.2.0") != ns {
		t.Fatal("expected the existing namespace")
	}

	unversioned := lk.Namespace("test:caps/plain")
	if unversioned.Version() != nil {
		t.Fatal("unversioned namespace should have nil version")
	}
	if unversioned.FullPath() != "test:caps/plain" {
		t.Fatalf("unexpected full path %q", unversioned.FullPath())
	}
}

func TestNamespace_DuplicateDefineRejected(t *testing.T) {
	lk := newTestLinker(t)
	ns := lk.Namespace("test:caps/x@1.0.0")

	if err := ns.DefineFunc("f", noop, nil, nil); err != nil {
		t.Fatal(err)
	}
	err := ns.DefineFunc("f", noop, nil, nil)
	if err == nil {
		t.Fatal("expected duplicate definition to be rejected")
	}
	target := &liberrors.Error{Phase: liberrors.PhaseLink, Kind: liberrors.KindDuplicateName}
	if !errors.Is(err, target) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLinker_DefineAndResolve(t *testing.T) {
	lk := newTestLinker(t)

	if err := lk.DefineFunc("test:caps/x@1.2.0#f", noop, nil, nil); err != nil {
		t.Fatal(err)
	}

	if def := lk.Resolve("test:caps/x@1.2.0#f"); def == nil {
		t.Fatal("exact version should resolve")
	}
	if def := lk.Resolve("test:caps/x@1.1.0#f"); def == nil {
		t.Fatal("older compatible import should resolve with semver matching")
	}
	if def := lk.Resolve("test:caps/x@2.0.0#f"); def != nil {
		t.Fatal("different major version should not resolve")
	}
	if def := lk.Resolve("test:caps/x@1.2.0#missing"); def != nil {
		t.Fatal("unknown function should not resolve")
	}
}

func TestLinker_ResolveWithoutSemver(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { _ = rt.Close(ctx) })

	lk := New(rt, Options{SemverMatching: false})
	if err := lk.DefineFunc("test:caps/x@1.2.0#f", noop, nil, nil); err != nil {
		t.Fatal(err)
	}

	if def := lk.Resolve("test:caps/x@1.1.0#f"); def != nil {
		t.Fatal("semver matching disabled, older import should not resolve")
	}
}

func TestLinker_MalformedFuncPath(t *testing.T) {
	lk := newTestLinker(t)
	if err := lk.DefineFunc("no-separator", noop, nil, nil); err == nil {
		t.Fatal("expected error for path without #")
	}
}

func TestInstantiateHostModules_CallableFromHost(t *testing.T) {
	ctx := context.Background()
	lk := newTestLinker(t)

	calls := 0
	ns := lk.Namespace("test:caps/counter@0.1.0")
	err := ns.DefineFunc("bump", api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
		calls++
		stack[0] = uint64(calls)
	}), nil, []api.ValueType{api.ValueTypeI64})
	if err != nil {
		t.Fatal(err)
	}

	if err := lk.InstantiateHostModules(ctx); err != nil {
		t.Fatal(err)
	}

	mod := lk.HostModule("test:caps/counter@0.1.0")
	if mod == nil {
		t.Fatal("host module not instantiated")
	}

	results, err := mod.ExportedFunction("bump").Call(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != 1 || calls != 1 {
		t.Fatalf("handler not invoked: results=%v calls=%d", results, calls)
	}

	// A second instantiation pass is a no-op.
	if err := lk.InstantiateHostModules(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
		ok   bool
	}{
		{"0.2.0", Version{0, 2, 0}, true},
		{"1.2", Version{1, 2, 0}, true},
		{"3", Version{3, 0, 0}, true},
		{"", Version{}, false},
		{"1.2.3.4", Version{}, false},
		{"1.x", Version{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseVersion(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseVersion(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestVersion_Compatible(t *testing.T) {
	v := Version{Major: 1, Minor: 2, Patch: 3}

	if !v.Compatible(Version{1, 2, 3}) {
		t.Error("identical versions should be compatible")
	}
	if !v.Compatible(Version{1, 1, 9}) {
		t.Error("older minor should be compatible")
	}
	if !v.Compatible(Version{1, 2, 0}) {
		t.Error("older patch should be compatible")
	}
	if v.Compatible(Version{1, 3, 0}) {
		t.Error("newer minor should not be compatible")
	}
	if v.Compatible(Version{2, 0, 0}) {
		t.Error("different major should not be compatible")
	}
}
