package engine

import (
	"context"
	stderrors "errors"

	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	bisresample "github.com/bioimagesuiteweb/bisresample"
	"github.com/bioimagesuiteweb/bisresample/errors"
)

// Instance is a running library instance. Not safe for concurrent use.
type Instance struct {
	module  api.Module
	memory  *Memory
	alloc   *allocator
	release api.Function
	funcs   map[string]api.Function
}

// Memory returns the instance's linear memory.
func (i *Instance) Memory() *Memory {
	return i.memory
}

// Allocator returns the allocator backed by the library's malloc and free.
func (i *Instance) Allocator() bisresample.Allocator {
	return i.alloc
}

func (i *Instance) function(name string) api.Function {
	if fn, ok := i.funcs[name]; ok {
		return fn
	}
	fn := i.module.ExportedFunction(name)
	if fn != nil {
		i.funcs[name] = fn
	}
	return fn
}

// Call invokes an export with raw core values. A trap or exit inside the
// library comes back as a KindTrap error.
func (i *Instance) Call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	if i.module == nil {
		return nil, errors.NotInitialized(errors.PhaseInvoke, "instance")
	}
	fn := i.function(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseInvoke, "export", name)
	}

	results, err := fn.Call(ctx, args...)
	if err != nil {
		var exit *sys.ExitError
		if stderrors.As(err, &exit) && exit.ExitCode() == 0 {
			return nil, errors.CallFailed(name, "library exited")
		}
		return nil, errors.Trap(name, err)
	}
	return results, nil
}

// Global returns the value of an exported global.
func (i *Instance) Global(name string) (uint64, bool) {
	if i.module == nil {
		return 0, false
	}
	g := i.module.ExportedGlobal(name)
	if g == nil {
		return 0, false
	}
	return g.Get(), true
}

// Release frees an object the library created, through jsdel_array when the
// library has it and free otherwise.
func (i *Instance) Release(ctx context.Context, ptr uint32) {
	if ptr == 0 || i.release == nil {
		return
	}
	if _, err := i.release.Call(ctx, api.EncodeU32(ptr)); err != nil {
		Logger().Warn("release: library call failed",
			zap.Uint32("ptr", ptr),
			zap.Error(err))
	}
}

// Close closes the instance. It is safe to call more than once.
func (i *Instance) Close(ctx context.Context) error {
	if i.module == nil {
		return nil
	}
	err := i.module.Close(ctx)
	i.module = nil
	i.funcs = nil
	i.memory = nil
	i.alloc = nil
	i.release = nil
	return err
}
