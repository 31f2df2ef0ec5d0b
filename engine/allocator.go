package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	bisresample "github.com/bioimagesuiteweb/bisresample"
	"github.com/bioimagesuiteweb/bisresample/errors"
)

// allocator implements bisresample.Allocator using the library's exports
type allocator struct {
	malloc api.Function
	free   api.Function
}

func (a *allocator) Alloc(ctx context.Context, size uint32) (uint32, error) {
	if a.malloc == nil {
		return 0, errors.NotFound(errors.PhaseMarshal, "export", ExportMalloc)
	}
	res, err := a.malloc.Call(ctx, api.EncodeU32(size))
	if err != nil {
		return 0, errors.AllocationFailed(size, err)
	}
	ptr := api.DecodeU32(res[0])
	if ptr == 0 {
		return 0, errors.AllocationFailed(size, nil)
	}
	return ptr, nil
}

func (a *allocator) Free(ctx context.Context, ptr uint32) {
	if a.free == nil || ptr == 0 {
		return
	}
	if _, err := a.free.Call(ctx, api.EncodeU32(ptr)); err != nil {
		Logger().Warn("Free: library call failed",
			zap.Uint32("ptr", ptr),
			zap.Error(err))
	}
}

// Compile-time check that allocator implements bisresample.Allocator
var _ bisresample.Allocator = (*allocator)(nil)
