package random

import (
	"context"
	"math/rand"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-capabilities/capability"
	"github.com/wippyai/wasm-capabilities/linker"
)

// Namespace is the guest-visible interface path.
const Namespace = "wippy:caps/random@0.1.0"

// State is a per-instance PRNG stream. Instances draw from independent
// streams, so one guest's consumption never shifts another's sequence.
type State struct {
	rng *rand.Rand
}

// Next returns the next value in the instance's stream.
func (s *State) Next() uint64 {
	return s.rng.Uint64()
}

// Fill fills buf from the instance's stream.
func (s *State) Fill(buf []byte) {
	_, _ = s.rng.Read(buf)
}

// Random exposes a non-cryptographic PRNG to guests. Seeded pins the seed
// for reproducible runs; otherwise every instance is seeded independently.
//
// Guest interface:
//
//	next-u64() -> u64
//	fill(buf-ptr: u32, buf-len: u32)
type Random struct {
	seed    int64
	hasSeed bool
}

func New() *Random {
	return &Random{}
}

// Seeded creates a provider whose instances all start from seed.
func Seeded(seed int64) *Random {
	return &Random{seed: seed, hasSeed: true}
}

func (c *Random) DefaultState() State {
	seed := c.seed
	if !c.hasSeed {
		seed = rand.Int63() //nolint:gosec // intentionally non-cryptographic
	}
	return State{rng: rand.New(rand.NewSource(seed))} //nolint:gosec
}

func (c *Random) Link(lk *linker.Linker, get capability.Accessor[State]) error {
	ns := lk.Namespace(Namespace)

	err := ns.DefineWitFunc("next-u64", func(ctx context.Context, _ api.Module, stack []uint64) {
		st := get(capability.StoreFromContext(ctx))
		stack[0] = st.Next()
	}, linker.Signature{
		Results: []wit.Type{wit.U64{}},
	})
	if err != nil {
		return err
	}

	return ns.DefineWitFunc("fill", func(ctx context.Context, mod api.Module, stack []uint64) {
		st := get(capability.StoreFromContext(ctx))
		ptr := uint32(stack[0])
		length := uint32(stack[1])

		buf := make([]byte, length)
		st.Fill(buf)
		if !mod.Memory().Write(ptr, buf) {
			panic("random: guest buffer out of memory range")
		}
	}, linker.Signature{
		Params: []wit.Type{wit.U32{}, wit.U32{}},
	})
}
