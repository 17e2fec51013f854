// Package wasmtest provides minimal hand-assembled WASM binaries for tests
// that need a real guest module without a toolchain.
package wasmtest

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// EmptyModule is the smallest valid core module: magic and version only.
var EmptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// MemoryModule declares one page of linear memory and exports it as
// "memory". Used to drive host functions that read or write guest memory.
var MemoryModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic + version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 memory, min 1 page
	0x07, 0x0a, 0x01, // export section: 1 export
	0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00, // "memory" -> mem 0
}

// InstantiateMemoryModule compiles and instantiates MemoryModule anonymously.
func InstantiateMemoryModule(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	return rt.InstantiateWithConfig(ctx, MemoryModule, wazero.NewModuleConfig().WithName(""))
}
