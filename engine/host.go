package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"
)

const (
	wasiModule = wasi_snapshot_preview1.ModuleName
	envModule  = "env"
)

// instantiateWASI exports the WASI preview1 functions the library uses for
// console output, clocks and exit.
func instantiateWASI(ctx context.Context, r wazero.Runtime) error {
	_, err := wasi_snapshot_preview1.Instantiate(ctx, r)
	return err
}

// instantiateEnv provides the env helpers standalone emscripten builds import.
func instantiateEnv(ctx context.Context, r wazero.Runtime) error {
	builder := r.NewHostModuleBuilder(envModule)

	builder = builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			Logger().Debug("library memory grew", zap.Uint32("index", api.DecodeU32(stack[0])))
		}), []api.ValueType{api.ValueTypeI32}, nil).
		Export("emscripten_notify_memory_growth")

	builder = builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, _ []uint64) {
			panic(fmt.Errorf("library called abort"))
		}), nil, nil).
		Export("abort")

	_, err := builder.Instantiate(ctx)
	return err
}
