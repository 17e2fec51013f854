package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-capabilities/capability"
	"github.com/wippyai/wasm-capabilities/caps/clock"
	"github.com/wippyai/wasm-capabilities/caps/kv"
	"github.com/wippyai/wasm-capabilities/caps/logging"
	"github.com/wippyai/wasm-capabilities/caps/random"
	"github.com/wippyai/wasm-capabilities/caps/terminal"
	"github.com/wippyai/wasm-capabilities/engine"
	"github.com/wippyai/wasm-capabilities/runtime"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to core wasm module")
		funcName    = flag.String("func", "", "Exported function to call")
		argsStr     = flag.String("args", "", "Raw u64 arguments (comma-separated)")
		seed        = flag.Int64("seed", 0, "Seed the random capability (0 = per-instance)")
		list        = flag.Bool("list", false, "List capabilities and exports, then exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: capctl -wasm <file.wasm> [-func name] [-args 1,2,3]")
		fmt.Fprintln(os.Stderr, "       capctl -wasm <file.wasm> -list")
		fmt.Fprintln(os.Stderr, "       capctl -wasm <file.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			engine.SetLogger(logger)
			defer logger.Sync() //nolint:errcheck
		}
	}

	if *interactive {
		if err := runInteractive(*wasmFile, *seed); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*wasmFile, *funcName, *argsStr, *seed, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// session is one runtime with the built-in capabilities registered.
type session struct {
	rt       *runtime.Runtime
	kvHandle capability.Handle[kv.State]
	logH     capability.Handle[logging.State]
}

func newSession(ctx context.Context, seed int64) (*session, error) {
	rt, err := runtime.New(ctx)
	if err != nil {
		return nil, err
	}

	s := &session{rt: rt}

	if s.kvHandle, err = runtime.AddCapability[kv.State](rt, kv.New()); err != nil {
		return nil, err
	}
	if _, err = runtime.AddCapability[clock.State](rt, clock.New()); err != nil {
		return nil, err
	}
	rnd := random.New()
	if seed != 0 {
		rnd = random.Seeded(seed)
	}
	if _, err = runtime.AddCapability[random.State](rt, rnd); err != nil {
		return nil, err
	}
	if s.logH, err = runtime.AddCapability[logging.State](rt, logging.New(engine.Logger())); err != nil {
		return nil, err
	}
	if _, err = runtime.AddCapability[terminal.State](rt, terminal.New()); err != nil {
		return nil, err
	}

	return s, nil
}

func run(wasmFile, funcName, argsStr string, seed int64, listOnly bool) error {
	ctx := context.Background()

	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	s, err := newSession(ctx, seed)
	if err != nil {
		return err
	}
	defer s.rt.Close(ctx)

	mod, err := s.rt.Load(ctx, data)
	if err != nil {
		return err
	}

	fmt.Printf("Module: %s\n\nCapabilities:\n", wasmFile)
	for _, ns := range s.rt.Linker().Namespaces() {
		fmt.Printf("  %s\n", ns.FullPath())
		for _, fn := range ns.FuncNames() {
			fmt.Printf("    - %s\n", fn)
		}
	}

	exports := mod.ExportedFunctions()
	sort.Strings(exports)
	fmt.Printf("\nExported functions:\n")
	for _, name := range exports {
		fmt.Printf("  %s\n", name)
	}

	if listOnly || funcName == "" {
		return nil
	}

	args, err := parseArgs(argsStr)
	if err != nil {
		return err
	}

	inst, err := mod.Instantiate(ctx)
	if err != nil {
		return err
	}
	defer inst.Close(ctx)

	results, err := inst.Call(ctx, funcName, args...)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s(%s) = %v\n", funcName, argsStr, results)

	dumpState(s, inst)
	return nil
}

func dumpState(s *session, inst *runtime.Instance) {
	kvState := capability.GetOrInsert(inst.Store(), s.kvHandle)
	if kvState.Len() > 0 {
		fmt.Printf("\nkv entries:\n")
		keys := kvState.Keys()
		sort.Strings(keys)
		for _, k := range keys {
			v, _ := kvState.Get(k)
			fmt.Printf("  %s = %s\n", k, v)
		}
	}

	logState := capability.GetOrInsert(inst.Store(), s.logH)
	if n := len(logState.Entries()); n > 0 {
		fmt.Printf("\nguest log records: %d\n", n)
	}
}

func parseArgs(s string) ([]uint64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	args := make([]uint64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", p, err)
		}
		args = append(args, v)
	}
	return args, nil
}
