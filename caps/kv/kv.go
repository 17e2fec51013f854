package kv

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-capabilities/capability"
	"github.com/wippyai/wasm-capabilities/linker"
)

// Namespace is the guest-visible interface path.
const Namespace = "wippy:caps/kv@0.1.0"

// State is one instance's key-value data. Instances never see each other's
// entries.
type State struct {
	entries map[string]string
}

func (s *State) Get(key string) (string, bool) {
	v, ok := s.entries[key]
	return v, ok
}

func (s *State) Put(key, value string) {
	s.entries[key] = value
}

func (s *State) Delete(key string) bool {
	_, ok := s.entries[key]
	delete(s.entries, key)
	return ok
}

func (s *State) Len() int {
	return len(s.entries)
}

// Keys returns all keys in unspecified order.
func (s *State) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

// KV exposes an in-memory key-value store to guests.
//
// Guest interface:
//
//	set(key: string, value: string)
//	get(key: string, buf-ptr: u32, buf-cap: u32) -> s32  // bytes written, -1 if absent or too small
//	delete(key: string) -> u32                           // 1 if the key existed
//	size() -> u32
type KV struct{}

func New() *KV {
	return &KV{}
}

func (c *KV) DefaultState() State {
	return State{entries: make(map[string]string)}
}

func (c *KV) Link(lk *linker.Linker, get capability.Accessor[State]) error {
	ns := lk.Namespace(Namespace)

	err := ns.DefineWitFunc("set", func(ctx context.Context, mod api.Module, stack []uint64) {
		st := get(capability.StoreFromContext(ctx))
		key := readString(mod, stack[0], stack[1])
		val := readString(mod, stack[2], stack[3])
		st.Put(key, val)
	}, linker.Signature{
		Params: []wit.Type{wit.String{}, wit.String{}},
	})
	if err != nil {
		return err
	}

	err = ns.DefineWitFunc("get", func(ctx context.Context, mod api.Module, stack []uint64) {
		st := get(capability.StoreFromContext(ctx))
		key := readString(mod, stack[0], stack[1])
		bufPtr := uint32(stack[2])
		bufCap := uint32(stack[3])

		val, ok := st.Get(key)
		if !ok || uint32(len(val)) > bufCap {
			stack[0] = api.EncodeI32(-1)
			return
		}
		if !mod.Memory().Write(bufPtr, []byte(val)) {
			stack[0] = api.EncodeI32(-1)
			return
		}
		stack[0] = api.EncodeI32(int32(len(val)))
	}, linker.Signature{
		Params:  []wit.Type{wit.String{}, wit.U32{}, wit.U32{}},
		Results: []wit.Type{wit.S32{}},
	})
	if err != nil {
		return err
	}

	err = ns.DefineWitFunc("delete", func(ctx context.Context, mod api.Module, stack []uint64) {
		st := get(capability.StoreFromContext(ctx))
		key := readString(mod, stack[0], stack[1])
		if st.Delete(key) {
			stack[0] = 1
		} else {
			stack[0] = 0
		}
	}, linker.Signature{
		Params:  []wit.Type{wit.String{}},
		Results: []wit.Type{wit.U32{}},
	})
	if err != nil {
		return err
	}

	return ns.DefineWitFunc("size", func(ctx context.Context, _ api.Module, stack []uint64) {
		st := get(capability.StoreFromContext(ctx))
		stack[0] = uint64(st.Len())
	}, linker.Signature{
		Results: []wit.Type{wit.U32{}},
	})
}

// readString copies a guest string given its flattened (ptr, len) pair.
// Out-of-range reads indicate a corrupt guest and panic via the nil slice.
func readString(mod api.Module, ptr, length uint64) string {
	buf, ok := mod.Memory().Read(uint32(ptr), uint32(length))
	if !ok {
		panic("kv: guest string out of memory range")
	}
	return string(buf)
}
