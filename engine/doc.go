// Package engine runs the biswasm library on wazero.
//
// # Architecture
//
// The engine package provides three main types:
//
//	Engine   - Creates and manages the wazero runtime and host modules
//	Library  - A compiled library whose exports passed the ABI check
//	Instance - A running library instance with memory and allocator
//
// # Instantiation Flow
//
//  1. Engine.Compile() compiles the binary and checks its exports
//  2. Library holds the compiled module and knows which host modules it needs
//  3. Library.Instantiate() creates an anonymous Instance
//  4. Instance.Call invokes exports; Memory and Allocator move bytes across
//
// # ABI
//
// Exports are described with WIT primitive types and flattened to core
// value types before comparison:
//
//	Export              Params              Results
//	──────────────────────────────────────────────────
//	resampleImageWASM   u32, u32, s32       u32
//	malloc              u32                 u32
//	free                u32                 -
//	jsdel_array         u32                 -        (optional)
//	memory              exported linear memory
//
// Pointers are u32 offsets into linear memory; a zero result from
// resampleImageWASM means the library failed.
//
// # Host Modules
//
// Libraries built with a WASI-targeting toolchain import
// wasi_snapshot_preview1 and a few env helpers. The engine instantiates them
// once per runtime, on first use. Guest stdout and stderr go to the writers in
// Config, or to the engine logger at debug level.
//
// # Thread Safety
//
// Engine and Library are safe for concurrent use. Instance is not: each
// goroutine creates and closes its own.
package engine
