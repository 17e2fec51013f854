package logging

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-capabilities/capability"
	"github.com/wippyai/wasm-capabilities/linker"
)

// Namespace is the guest-visible interface path.
const Namespace = "wippy:caps/logging@0.1.0"

// Level mirrors the guest's numeric log levels.
type Level uint32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// Entry is one guest log record.
type Entry struct {
	Level   Level
	Message string
}

// State buffers an instance's log records in arrival order.
type State struct {
	entries []Entry
}

// Entries returns the records logged so far by this instance.
func (s *State) Entries() []Entry {
	return s.entries
}

func (s *State) append(e Entry) {
	s.entries = append(s.entries, e)
}

// Logging lets guests emit log records. Records are buffered per instance
// and mirrored to the provider's zap logger tagged with the instance's
// record count.
//
// Guest interface:
//
//	log(level: u32, message: string)
//	count() -> u32
type Logging struct {
	logger *zap.Logger
}

// New creates a logging provider emitting through logger. A nil logger
// buffers only.
func New(logger *zap.Logger) *Logging {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logging{logger: logger}
}

func (c *Logging) DefaultState() State {
	return State{}
}

func (c *Logging) Link(lk *linker.Linker, get capability.Accessor[State]) error {
	ns := lk.Namespace(Namespace)

	err := ns.DefineWitFunc("log", func(ctx context.Context, mod api.Module, stack []uint64) {
		st := get(capability.StoreFromContext(ctx))
		level := Level(uint32(stack[0]))
		msg, ok := mod.Memory().Read(uint32(stack[1]), uint32(stack[2]))
		if !ok {
			panic("logging: guest message out of memory range")
		}

		entry := Entry{Level: level, Message: string(msg)}
		st.append(entry)

		if ce := c.logger.Check(level.zapLevel(), entry.Message); ce != nil {
			ce.Write(zap.Int("guest_records", len(st.Entries())))
		}
	}, linker.Signature{
		Params: []wit.Type{wit.U32{}, wit.String{}},
	})
	if err != nil {
		return err
	}

	return ns.DefineWitFunc("count", func(ctx context.Context, _ api.Module, stack []uint64) {
		st := get(capability.StoreFromContext(ctx))
		stack[0] = uint64(len(st.Entries()))
	}, linker.Signature{
		Results: []wit.Type{wit.U32{}},
	})
}
