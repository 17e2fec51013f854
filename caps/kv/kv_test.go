package kv_test

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-capabilities/capability"
	"github.com/wippyai/wasm-capabilities/caps/kv"
	"github.com/wippyai/wasm-capabilities/runtime"
)

// kvGuest is a hand-assembled module importing kv set/get and re-exporting
// them as call-set/call-get, with one page of exported memory:
//
//	(import "wippy:caps/kv@0.1.0" "set" (func (param i32 i32 i32 i32)))
//	(import "wippy:caps/kv@0.1.0" "get" (func (param i32 i32 i32 i32) (result i32)))
//	(memory (export "memory") 1)
//	(func (export "call-set") (param i32 i32 i32 i32) ...)
//	(func (export "call-get") (param i32 i32 i32 i32) (result i32) ...)
var kvGuest = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic + version

	// type section: (i32 i32 i32 i32) -> () and (i32 i32 i32 i32) -> (i32)
	0x01, 0x10, 0x02,
	0x60, 0x04, 0x7f, 0x7f, 0x7f, 0x7f, 0x00,
	0x60, 0x04, 0x7f, 0x7f, 0x7f, 0x7f, 0x01, 0x7f,

	// import section: kv "set" (type 0), kv "get" (type 1)
	0x02, 0x35, 0x02,
	0x13, 'w', 'i', 'p', 'p', 'y', ':', 'c', 'a', 'p', 's', '/', 'k', 'v', '@', '0', '.', '1', '.', '0',
	0x03, 's', 'e', 't', 0x00, 0x00,
	0x13, 'w', 'i', 'p', 'p', 'y', ':', 'c', 'a', 'p', 's', '/', 'k', 'v', '@', '0', '.', '1', '.', '0',
	0x03, 'g', 'e', 't', 0x00, 0x01,

	// function section: two local functions using types 0 and 1
	0x03, 0x03, 0x02, 0x00, 0x01,

	// memory section: 1 memory, min 1 page
	0x05, 0x03, 0x01, 0x00, 0x01,

	// export section: memory, call-set (func 2), call-get (func 3)
	0x07, 0x20, 0x03,
	0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	0x08, 'c', 'a', 'l', 'l', '-', 's', 'e', 't', 0x00, 0x02,
	0x08, 'c', 'a', 'l', 'l', '-', 'g', 'e', 't', 0x00, 0x03,

	// code section: each body forwards its params to the import
	0x0a, 0x1b, 0x02,
	0x0c, 0x00, 0x20, 0x00, 0x20, 0x01, 0x20, 0x02, 0x20, 0x03, 0x10, 0x00, 0x0b,
	0x0c, 0x00, 0x20, 0x00, 0x20, 0x01, 0x20, 0x02, 0x20, 0x03, 0x10, 0x01, 0x0b,
}

func TestKV_GuestRoundTrip(t *testing.T) {
	ctx := context.Background()
	rt, err := runtime.New(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close(ctx)

	h, err := runtime.AddCapability[kv.State](rt, kv.New())
	if err != nil {
		t.Fatal(err)
	}

	mod, err := rt.Load(ctx, kvGuest)
	if err != nil {
		t.Fatal(err)
	}
	inst, err := mod.Instantiate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer inst.Close(ctx)

	mem := inst.Module().Memory()
	if !mem.Write(16, []byte("name")) || !mem.Write(32, []byte("alice")) {
		t.Fatal("failed to stage guest memory")
	}

	// Guest stores "name" -> "alice".
	if _, err := inst.Call(ctx, "call-set", 16, 4, 32, 5); err != nil {
		t.Fatal(err)
	}

	state := capability.GetOrInsert(inst.Store(), h)
	if v, ok := state.Get("name"); !ok || v != "alice" {
		t.Fatalf("host view of guest write: %q, %v", v, ok)
	}

	// Guest reads it back into a buffer at offset 64.
	results, err := inst.Call(ctx, "call-get", 16, 4, 64, 10)
	if err != nil {
		t.Fatal(err)
	}
	n := api.DecodeI32(results[0])
	if n != 5 {
		t.Fatalf("expected 5 bytes written, got %d", n)
	}
	buf, ok := mem.Read(64, uint32(n))
	if !ok || string(buf) != "alice" {
		t.Fatalf("guest buffer: %q", buf)
	}

	// Missing key reports -1.
	if !mem.Write(16, []byte("gone")) {
		t.Fatal("failed to stage guest memory")
	}
	results, err = inst.Call(ctx, "call-get", 16, 4, 64, 10)
	if err != nil {
		t.Fatal(err)
	}
	if api.DecodeI32(results[0]) != -1 {
		t.Fatalf("expected -1 for missing key, got %d", api.DecodeI32(results[0]))
	}
}

func TestKV_InstanceIsolationThroughGuestCalls(t *testing.T) {
	ctx := context.Background()
	rt, err := runtime.New(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close(ctx)

	h, err := runtime.AddCapability[kv.State](rt, kv.New())
	if err != nil {
		t.Fatal(err)
	}

	mod, err := rt.Load(ctx, kvGuest)
	if err != nil {
		t.Fatal(err)
	}

	instA, err := mod.Instantiate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer instA.Close(ctx)
	instB, err := mod.Instantiate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer instB.Close(ctx)

	if !instA.Module().Memory().Write(16, []byte("keyval")) {
		t.Fatal("failed to stage guest memory")
	}
	if _, err := instA.Call(ctx, "call-set", 16, 3, 19, 3); err != nil {
		t.Fatal(err)
	}

	if capability.GetOrInsert(instA.Store(), h).Len() != 1 {
		t.Fatal("instance A should have one entry")
	}
	if capability.GetOrInsert(instB.Store(), h).Len() != 0 {
		t.Fatal("instance B saw instance A's entry")
	}
}

func TestState_Basic(t *testing.T) {
	state := kv.New().DefaultState()

	state.Put("a", "1")
	if v, ok := state.Get("a"); !ok || v != "1" {
		t.Fatalf("Get after Put: %q, %v", v, ok)
	}
	if !state.Delete("a") {
		t.Fatal("Delete existing key should report true")
	}
	if state.Delete("a") {
		t.Fatal("Delete missing key should report false")
	}
	if state.Len() != 0 {
		t.Fatalf("expected empty state, len %d", state.Len())
	}
}
