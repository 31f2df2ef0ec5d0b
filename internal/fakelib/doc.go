// Package fakelib emits a small core wasm module that stands in for the
// biswasm library in tests.
//
// The module exports memory, a bump-allocating malloc, no-op free and
// jsdel_array, and resampleImageWASM(image, config, debug) whose behavior is
// picked by Mode. It records the last config pointer and debug flag in the
// exported globals last_config and last_debug so tests can inspect what was
// forwarded. The binary is assembled directly; no toolchain is needed.
package fakelib
