package biswasm

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/bioimagesuiteweb/bisresample/bisobj"
	"github.com/bioimagesuiteweb/bisresample/engine"
	"github.com/bioimagesuiteweb/bisresample/errors"
)

// Session is one library instance. Not safe for concurrent use. After a
// failed call the instance state is unknown; close the session.
type Session struct {
	inst *engine.Instance
}

// Close closes the underlying instance.
func (s *Session) Close(ctx context.Context) error {
	return s.inst.Close(ctx)
}

// ResampleImage calls resampleImageWASM(image, json, debug) and returns the
// image the library produced.
func (s *Session) ResampleImage(ctx context.Context, img *bisobj.Image, cfg Config, debug bool) (*bisobj.Image, error) {
	if img == nil {
		return nil, errors.InvalidInput(errors.PhaseMarshal, "nil input image")
	}

	ptr, err := s.invoke(ctx, engine.ExportResample, []*bisobj.Image{img}, cfg, debug)
	if err != nil {
		return nil, err
	}
	defer s.inst.Release(ctx, ptr)

	raw, err := s.readObject(ptr)
	if err != nil {
		return nil, err
	}
	return bisobj.ParseImage(raw)
}

// invoke copies inputs and params into memory, calls export and returns the
// result pointer. Input buffers are freed before returning.
func (s *Session) invoke(ctx context.Context, export string, inputs []*bisobj.Image, params any, debug bool) (uint32, error) {
	alloc := s.inst.Allocator()

	jsonText, err := json.Marshal(params)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseMarshal, errors.KindInvalidInput, err, "encode parameters")
	}

	args := make([]uint64, 0, len(inputs)+2)
	var owned []uint32
	defer func() {
		for _, p := range owned {
			alloc.Free(ctx, p)
		}
	}()

	for _, in := range inputs {
		p, err := s.put(ctx, in.Bytes())
		if err != nil {
			return 0, err
		}
		owned = append(owned, p)
		args = append(args, uint64(p))
	}

	p, err := s.put(ctx, append(jsonText, 0))
	if err != nil {
		return 0, err
	}
	owned = append(owned, p)
	args = append(args, uint64(p))

	var flag uint64
	if debug {
		flag = 1
	}
	args = append(args, flag)

	Logger().Debug("invoke",
		zap.String("export", export),
		zap.ByteString("params", jsonText),
		zap.Bool("debug", debug))

	res, err := s.inst.Call(ctx, export, args...)
	if err != nil {
		return 0, err
	}
	ptr := uint32(res[0])
	if ptr == 0 {
		return 0, errors.CallFailed(export, "library returned a null object")
	}
	return ptr, nil
}

func (s *Session) put(ctx context.Context, data []byte) (uint32, error) {
	ptr, err := s.inst.Allocator().Alloc(ctx, uint32(len(data)))
	if err != nil {
		return 0, err
	}
	if err := s.inst.Memory().Write(ptr, data); err != nil {
		s.inst.Allocator().Free(ctx, ptr)
		return 0, err
	}
	return ptr, nil
}

// readObject copies the serialized object at ptr out of linear memory.
func (s *Session) readObject(ptr uint32) ([]byte, error) {
	mem := s.inst.Memory()
	frame, err := mem.Read(ptr, bisobj.FrameSize)
	if err != nil {
		return nil, err
	}
	h, err := bisobj.ReadHeader(frame)
	if err != nil {
		return nil, err
	}
	total := h.TotalSize()
	if total > int64(mem.Size()) {
		return nil, errors.OutOfBounds(errors.PhaseUnmarshal, ptr, uint32(min(total, 1<<32-1)), mem.Size())
	}
	return mem.Read(ptr, uint32(total))
}
