package bisobj

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bioimagesuiteweb/bisresample/errors"
)

// imageHeaderSize covers dimensions[5] int32 and spacing[5] float32.
const imageHeaderSize = 40

// Image is an opaque serialized image. The bytes are handed to the library
// exactly as they were read.
type Image struct {
	raw    []byte
	header Header
}

// ParseImage validates the frame of b and wraps it. Bytes beyond the length
// the frame declares are dropped; a blob shorter than declared is rejected.
// The returned Image aliases b.
func ParseImage(b []byte) (*Image, error) {
	h, err := ReadHeader(b)
	if err != nil {
		return nil, err
	}
	if h.Magic != MagicImage {
		return nil, errors.New(errors.PhaseUnmarshal, errors.KindInvalidData).
			Expected(MagicImage.String()).
			Actual(h.Magic.String()).
			Build()
	}
	total := h.TotalSize()
	if int64(len(b)) < total {
		return nil, errors.New(errors.PhaseUnmarshal, errors.KindInvalidData).
			Expected(fmt.Sprintf("%d bytes", total)).
			Actual(fmt.Sprintf("%d bytes", len(b))).
			Detail("truncated image").
			Build()
	}
	return &Image{raw: b[:total], header: h}, nil
}

// Bytes returns the serialized image.
func (img *Image) Bytes() []byte {
	return img.raw
}

// Len returns the serialized size in bytes.
func (img *Image) Len() int {
	return len(img.raw)
}

// Header returns the common frame of the image.
func (img *Image) Header() Header {
	return img.header
}

// Summary describes an image for logs and the interactive view.
type Summary struct {
	Type       string     `json:"type" yaml:"type"`
	Dimensions [5]int32   `json:"dimensions" yaml:"dimensions"`
	Spacing    [5]float32 `json:"spacing" yaml:"spacing"`
	Bytes      int        `json:"bytes" yaml:"bytes"`
}

// Summary reads dimensions and spacing from the image header. Both stay zero
// when the header is shorter than expected.
func (img *Image) Summary() Summary {
	s := Summary{
		Type:  img.header.DataType.String(),
		Bytes: len(img.raw),
	}
	if img.header.HeaderSize < imageHeaderSize {
		return s
	}
	hdr := img.raw[FrameSize : FrameSize+imageHeaderSize]
	for i := 0; i < 5; i++ {
		s.Dimensions[i] = int32(binary.LittleEndian.Uint32(hdr[i*4:]))
		s.Spacing[i] = math.Float32frombits(binary.LittleEndian.Uint32(hdr[20+i*4:]))
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%dx%dx%d %s @ %gx%gx%g",
		s.Dimensions[0], s.Dimensions[1], s.Dimensions[2], s.Type,
		s.Spacing[0], s.Spacing[1], s.Spacing[2])
}

// NewTestImage builds a minimal image blob with the given dimensions and
// spacing. Each payload byte holds its voxel index mod 256. Only tools and
// tests that need a well-formed handle should use it.
func NewTestImage(dims [3]int32, spacing [3]float32) *Image {
	voxels := int32(1)
	for _, d := range dims {
		voxels *= d
	}
	b := make([]byte, FrameSize+imageHeaderSize+int(voxels))
	h := Header{
		Magic:      MagicImage,
		DataType:   TypeUint8,
		HeaderSize: imageHeaderSize,
		DataSize:   voxels,
	}
	PutHeader(b, h)
	hdr := b[FrameSize:]
	for i := 0; i < 5; i++ {
		d, sp := int32(1), float32(1)
		if i < 3 {
			d, sp = dims[i], spacing[i]
		}
		binary.LittleEndian.PutUint32(hdr[i*4:], uint32(d))
		binary.LittleEndian.PutUint32(hdr[20+i*4:], math.Float32bits(sp))
	}
	payload := b[FrameSize+imageHeaderSize:]
	for i := range payload {
		payload[i] = byte(i)
	}
	return &Image{raw: b, header: h}
}
