package terminal

import (
	"context"
	"os"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
	"golang.org/x/term"

	"github.com/wippyai/wasm-capabilities/capability"
	"github.com/wippyai/wasm-capabilities/linker"
)

// Namespace is the guest-visible interface path.
const Namespace = "wippy:caps/terminal@0.1.0"

// Guest fd numbers, matching POSIX convention.
const (
	FdStdin  uint32 = 0
	FdStdout uint32 = 1
	FdStderr uint32 = 2
)

// State caches terminal probes per instance, so a guest polling in a loop
// doesn't hit the tty ioctls every call.
type State struct {
	isTTY map[uint32]bool
}

func (s *State) cached(fd uint32, probe func() bool) bool {
	if v, ok := s.isTTY[fd]; ok {
		return v
	}
	v := probe()
	s.isTTY[fd] = v
	return v
}

// Terminal exposes host terminal probes to guests.
//
// Guest interface:
//
//	is-terminal(fd: u32) -> u32
//	columns() -> u32  // 0 when stdout is not a terminal
type Terminal struct{}

func New() *Terminal {
	return &Terminal{}
}

func (c *Terminal) DefaultState() State {
	return State{isTTY: make(map[uint32]bool)}
}

func hostFd(fd uint32) int {
	switch fd {
	case FdStdin:
		return int(os.Stdin.Fd())
	case FdStdout:
		return int(os.Stdout.Fd())
	case FdStderr:
		return int(os.Stderr.Fd())
	default:
		return -1
	}
}

func (c *Terminal) Link(lk *linker.Linker, get capability.Accessor[State]) error {
	ns := lk.Namespace(Namespace)

	err := ns.DefineWitFunc("is-terminal", func(ctx context.Context, _ api.Module, stack []uint64) {
		st := get(capability.StoreFromContext(ctx))
		fd := uint32(stack[0])

		isTTY := false
		if host := hostFd(fd); host >= 0 {
			isTTY = st.cached(fd, func() bool { return term.IsTerminal(host) })
		}
		if isTTY {
			stack[0] = 1
		} else {
			stack[0] = 0
		}
	}, linker.Signature{
		Params:  []wit.Type{wit.U32{}},
		Results: []wit.Type{wit.U32{}},
	})
	if err != nil {
		return err
	}

	return ns.DefineWitFunc("columns", func(ctx context.Context, _ api.Module, stack []uint64) {
		st := get(capability.StoreFromContext(ctx))
		stack[0] = 0

		fd := hostFd(FdStdout)
		if !st.cached(FdStdout, func() bool { return term.IsTerminal(fd) }) {
			return
		}
		if cols, _, err := term.GetSize(fd); err == nil && cols > 0 {
			stack[0] = uint64(cols)
		}
	}, linker.Signature{
		Results: []wit.Type{wit.U32{}},
	})
}
