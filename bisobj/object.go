package bisobj

import (
	"encoding/binary"
	"fmt"

	"github.com/bioimagesuiteweb/bisresample/errors"
)

// FrameSize is the size of the common object header.
const FrameSize = 16

// Magic identifies the object type of a serialized blob.
type Magic int32

const (
	MagicVector         Magic = 20001
	MagicMatrix         Magic = 20002
	MagicImage          Magic = 20003
	MagicGridTransform  Magic = 20004
	MagicComboTransform Magic = 20005
	MagicCollection     Magic = 20008
)

func (m Magic) String() string {
	switch m {
	case MagicVector:
		return "vector"
	case MagicMatrix:
		return "matrix"
	case MagicImage:
		return "image"
	case MagicGridTransform:
		return "gridtransform"
	case MagicComboTransform:
		return "combotransform"
	case MagicCollection:
		return "collection"
	}
	return fmt.Sprintf("magic(%d)", int32(m))
}

// DataType is the element type code of the payload.
type DataType int32

const (
	TypeUint8   DataType = 2
	TypeInt16   DataType = 4
	TypeInt32   DataType = 8
	TypeFloat32 DataType = 16
	TypeFloat64 DataType = 64
	TypeInt8    DataType = 256
	TypeUint16  DataType = 512
	TypeUint32  DataType = 768
)

var dataTypeNames = map[DataType]string{
	TypeUint8:   "uchar",
	TypeInt16:   "short",
	TypeInt32:   "int",
	TypeFloat32: "float",
	TypeFloat64: "double",
	TypeInt8:    "char",
	TypeUint16:  "ushort",
	TypeUint32:  "uint",
}

func (d DataType) String() string {
	if name, ok := dataTypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int32(d))
}

// Header is the common 16-byte frame at the start of every object.
type Header struct {
	Magic      Magic
	DataType   DataType
	HeaderSize int32
	DataSize   int32
}

// TotalSize returns the full length of the object described by h.
func (h Header) TotalSize() int64 {
	return FrameSize + int64(h.HeaderSize) + int64(h.DataSize)
}

// ReadHeader decodes the frame at the start of b.
func ReadHeader(b []byte) (Header, error) {
	if len(b) < FrameSize {
		return Header{}, errors.New(errors.PhaseUnmarshal, errors.KindInvalidData).
			Expected(fmt.Sprintf("at least %d bytes", FrameSize)).
			Actual(fmt.Sprintf("%d bytes", len(b))).
			Build()
	}
	h := Header{
		Magic:      Magic(int32(binary.LittleEndian.Uint32(b[0:]))),
		DataType:   DataType(int32(binary.LittleEndian.Uint32(b[4:]))),
		HeaderSize: int32(binary.LittleEndian.Uint32(b[8:])),
		DataSize:   int32(binary.LittleEndian.Uint32(b[12:])),
	}
	if h.HeaderSize < 0 || h.DataSize < 0 {
		return Header{}, errors.New(errors.PhaseUnmarshal, errors.KindInvalidData).
			Value(h).
			Detail("negative section size (header %d, data %d)", h.HeaderSize, h.DataSize).
			Build()
	}
	return h, nil
}

// PutHeader writes h into the first FrameSize bytes of b.
func PutHeader(b []byte, h Header) {
	binary.LittleEndian.PutUint32(b[0:], uint32(h.Magic))
	binary.LittleEndian.PutUint32(b[4:], uint32(h.DataType))
	binary.LittleEndian.PutUint32(b[8:], uint32(h.HeaderSize))
	binary.LittleEndian.PutUint32(b[12:], uint32(h.DataSize))
}
