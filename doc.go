// Package bisresample resamples 3D images onto a new voxel grid by calling into
// the precompiled biswasm computation library.
//
// The Go side carries no resampling math. It parses the module parameters,
// hands the serialized input image and a JSON configuration to the library
// export resampleImageWASM, and stores the object the library returns.
//
// # Architecture Overview
//
//	bisresample/         Root package with the Memory and Allocator interfaces
//	├── engine/          wazero integration: compile, ABI check, instances
//	├── biswasm/         Typed wrappers over the library exports
//	├── bisobj/          Serialized object handles passed through unchanged
//	├── module/          Module descriptions, parameter parsing, execution
//	├── resample/        The resampleImage module
//	├── batch/           Concurrent processing of many inputs
//	├── watch/           Directory watcher with Prometheus metrics
//	├── config/          YAML and environment configuration
//	├── errors/          Structured error types
//	└── cmd/bisresample  Command line entry point
//
// # Quick Start
//
//	eng, err := engine.NewEngine(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	lib, err := biswasm.Load(ctx, eng, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m := resample.New(lib)
//	ok, err := module.Execute(ctx, m, map[string]*bisobj.Image{"input": img},
//	    map[string]string{"xsp": "1.0", "ysp": "1.0", "zsp": "1.0"})
//
// # Thread Safety
//
// Engine and the compiled library are safe for concurrent use. Sessions and
// module values hold per-invocation state and belong to a single goroutine.
//
// # Memory Model
//
// WASM linear memory can only grow. Buffers handed to the library are
// released after each call, but the pages stay with the instance, so every
// invocation uses a fresh instance.
package bisresample
