package engine

import (
	"bytes"

	"github.com/tetratelabs/wazero/api"

	bisresample "github.com/bioimagesuiteweb/bisresample"
	"github.com/bioimagesuiteweb/bisresample/errors"
)

// Memory wraps wazero memory to implement bisresample.Memory
type Memory struct {
	mem api.Memory
}

// Read returns a copy of length bytes at offset. The copy stays valid after
// the memory grows or the instance closes.
func (m *Memory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseUnmarshal, offset, length, m.mem.Size())
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseMarshal, offset, uint32(len(data)), m.mem.Size())
	}
	return nil
}

func (m *Memory) ReadU32(offset uint32) (uint32, error) {
	val, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseUnmarshal, offset, 4, m.mem.Size())
	}
	return val, nil
}

func (m *Memory) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseMarshal, offset, 4, m.mem.Size())
	}
	return nil
}

// ReadCString reads a NUL-terminated string at offset, scanning at most max
// bytes.
func (m *Memory) ReadCString(offset uint32, max uint32) (string, error) {
	size := m.mem.Size()
	if offset >= size {
		return "", errors.OutOfBounds(errors.PhaseUnmarshal, offset, 1, size)
	}
	if max > size-offset {
		max = size - offset
	}
	data, _ := m.mem.Read(offset, max)
	if n := bytes.IndexByte(data, 0); n >= 0 {
		return string(data[:n]), nil
	}
	return "", errors.InvalidData(errors.PhaseUnmarshal, "string is not NUL-terminated")
}

func (m *Memory) Size() uint32 {
	if m.mem == nil {
		return 0
	}
	return m.mem.Size()
}

// Compile-time check that Memory implements bisresample.Memory and MemorySizer
var _ bisresample.Memory = (*Memory)(nil)
var _ bisresample.MemorySizer = (*Memory)(nil)
