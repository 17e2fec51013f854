package clock

import (
	"context"
	"time"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-capabilities/capability"
	"github.com/wippyai/wasm-capabilities/linker"
)

// Namespace is the guest-visible interface path.
const Namespace = "wippy:caps/clock@0.1.0"

// State pins each instance's monotonic origin. The origin is captured when
// the instance first touches the clock, so instances created together still
// measure their own elapsed time.
type State struct {
	origin time.Time
	frozen *time.Time
}

// Freeze pins the wall clock to t, for deterministic guests. Pass the
// zero value through Thaw to resume real time.
func (s *State) Freeze(t time.Time) {
	s.frozen = &t
}

// Thaw resumes real wall time.
func (s *State) Thaw() {
	s.frozen = nil
}

func (s *State) now() time.Time {
	if s.frozen != nil {
		return *s.frozen
	}
	return time.Now()
}

// Elapsed returns the time since the instance's monotonic origin.
func (s *State) Elapsed() time.Duration {
	return s.now().Sub(s.origin)
}

// Clock exposes wall and monotonic time to guests.
//
// Guest interface:
//
//	now-unix-seconds() -> u64
//	now-unix-nanos() -> u64
//	monotonic-nanos() -> u64  // since the instance's first clock access
type Clock struct{}

func New() *Clock {
	return &Clock{}
}

func (c *Clock) DefaultState() State {
	return State{origin: time.Now()}
}

func (c *Clock) Link(lk *linker.Linker, get capability.Accessor[State]) error {
	ns := lk.Namespace(Namespace)

	err := ns.DefineWitFunc("now-unix-seconds", func(ctx context.Context, _ api.Module, stack []uint64) {
		st := get(capability.StoreFromContext(ctx))
		stack[0] = uint64(st.now().Unix())
	}, linker.Signature{
		Results: []wit.Type{wit.U64{}},
	})
	if err != nil {
		return err
	}

	err = ns.DefineWitFunc("now-unix-nanos", func(ctx context.Context, _ api.Module, stack []uint64) {
		st := get(capability.StoreFromContext(ctx))
		stack[0] = uint64(st.now().UnixNano())
	}, linker.Signature{
		Results: []wit.Type{wit.U64{}},
	})
	if err != nil {
		return err
	}

	return ns.DefineWitFunc("monotonic-nanos", func(ctx context.Context, _ api.Module, stack []uint64) {
		st := get(capability.StoreFromContext(ctx))
		stack[0] = uint64(st.Elapsed().Nanoseconds())
	}, linker.Signature{
		Results: []wit.Type{wit.U64{}},
	})
}
