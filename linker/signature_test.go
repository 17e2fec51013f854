package linker

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
)

func TestDefineWitFunc_Flattening(t *testing.T) {
	lk := newTestLinker(t)

	ns := lk.Namespace("test:caps/sig@0.1.0")
	err := ns.DefineWitFunc("mixed", noop, Signature{
		Params:  []wit.Type{wit.String{}, wit.U32{}, wit.Bool{}, wit.U64{}, wit.F64{}},
		Results: []wit.Type{wit.S32{}},
	})
	if err != nil {
		t.Fatal(err)
	}

	def := ns.Func("mixed")
	if def == nil {
		t.Fatal("function not defined")
	}

	wantParams := []api.ValueType{
		api.ValueTypeI32, api.ValueTypeI32, // string -> ptr, len
		api.ValueTypeI32, // u32
		api.ValueTypeI32, // bool
		api.ValueTypeI64, // u64
		api.ValueTypeF64, // f64
	}
	if len(def.ParamTypes) != len(wantParams) {
		t.Fatalf("got %d flat params, want %d", len(def.ParamTypes), len(wantParams))
	}
	for i, vt := range wantParams {
		if def.ParamTypes[i] != vt {
			t.Errorf("param %d: got %v, want %v", i, def.ParamTypes[i], vt)
		}
	}

	if len(def.ResultTypes) != 1 || def.ResultTypes[0] != api.ValueTypeI32 {
		t.Fatalf("unexpected results %v", def.ResultTypes)
	}
}

func TestDefineWitFunc_RejectsCompoundTypes(t *testing.T) {
	lk := newTestLinker(t)
	ns := lk.Namespace("test:caps/sig@0.1.0")

	err := ns.DefineWitFunc("bad", noop, Signature{
		Params: []wit.Type{&wit.TypeDef{Kind: &wit.List{Type: wit.U32{}}}},
	})
	if err == nil {
		t.Fatal("compound types should be rejected on the host boundary")
	}
}

func TestDefineWitFunc_StringResultIsCallable(t *testing.T) {
	// A flattened string result is a multi-value return; wazero must accept
	// it when the host module instantiates.
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { _ = rt.Close(ctx) })

	lk := NewWithDefaults(rt)
	ns := lk.Namespace("test:caps/str@0.1.0")
	err := ns.DefineWitFunc("where", api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = 16 // ptr
		stack[1] = 5  // len
	}), Signature{Results: []wit.Type{wit.String{}}})
	if err != nil {
		t.Fatal(err)
	}

	if err := lk.InstantiateHostModules(ctx); err != nil {
		t.Fatal(err)
	}

	results, err := lk.HostModule("test:caps/str@0.1.0").ExportedFunction("where").Call(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != 16 || results[1] != 5 {
		t.Fatalf("unexpected results %v", results)
	}
}
