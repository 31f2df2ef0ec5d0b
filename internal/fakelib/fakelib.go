package fakelib

import (
	"bytes"
	"encoding/binary"
)

// Mode selects what resampleImageWASM does.
type Mode int

const (
	// ModeCopy returns a freshly allocated copy of the input object.
	ModeCopy Mode = iota
	// ModeNull returns 0, the library's failure result.
	ModeNull
	// ModeTrap executes unreachable.
	ModeTrap
	// ModeBadFrame returns a pointer 4 bytes into the input, so the frame
	// read back is garbage.
	ModeBadFrame
)

// Options controls the emitted module.
type Options struct {
	Mode Mode
	// OmitResample leaves resampleImageWASM out of the exports.
	OmitResample bool
	// OmitJSDel leaves jsdel_array out of the exports.
	OmitJSDel bool
	// WrongSignature exports resampleImageWASM as (i32) -> i32.
	WrongSignature bool
	// WASI imports wasi_snapshot_preview1.fd_write and writes "debug\n" to
	// stdout whenever the debug flag is non-zero.
	WASI bool
}

// Names of the globals recording the last call.
const (
	GlobalLastConfig = "last_config"
	GlobalLastDebug  = "last_debug"
)

// DebugLine is what the WASI variant prints in debug mode.
const DebugLine = "debug\n"

// HeapBase is where malloc starts handing out memory.
const HeapBase = 1024

const (
	magic   = 0x6d736100
	version = 1

	secType     = 1
	secImport   = 2
	secFunction = 3
	secMemory   = 5
	secGlobal   = 6
	secExport   = 7
	secCode     = 10
	secData     = 11

	valI32   = 0x7f
	funcByte = 0x60

	kindFunc   = 0x00
	kindMemory = 0x02
	kindGlobal = 0x03
)

// opcodes
const (
	opUnreachable = 0x00
	opBlock       = 0x02
	opEnd         = 0x0b
	opBrIf        = 0x0d
	opReturn      = 0x0f
	opCall        = 0x10
	opDrop        = 0x1a
	opLocalGet    = 0x20
	opLocalSet    = 0x21
	opGlobalGet   = 0x23
	opGlobalSet   = 0x24
	opI32Load     = 0x28
	opMemorySize  = 0x3f
	opMemoryGrow  = 0x40
	opI32Const    = 0x41
	opI32Eqz      = 0x45
	opI32Ne       = 0x47
	opI32LeU      = 0x4d
	opI32Add      = 0x6a
	opI32Sub      = 0x6b
	opI32And      = 0x71
	opI32Shl      = 0x74
	opI32ShrU     = 0x76
	opPrefixFC    = 0xfc
	blockEmpty    = 0x40
	memoryCopy    = 10
)

// type indices
const (
	typeAlloc    = 0 // (i32) -> i32
	typeRelease  = 1 // (i32) -> ()
	typeResample = 2 // (i32, i32, i32) -> i32
	typeFdWrite  = 3 // (i32, i32, i32, i32) -> i32
)

// global indices
const (
	globalHeap = iota
	globalLastConfig
	globalLastDebug
)

// Build returns the module binary for opts.
func Build(opts Options) []byte {
	var base uint32
	if opts.WASI {
		base = 1
	}
	fnMalloc := base
	fnFree := base + 1
	fnJSDel := base + 2
	fnResample := base + 3

	w := &bytes.Buffer{}
	_ = binary.Write(w, binary.LittleEndian, uint32(magic))
	_ = binary.Write(w, binary.LittleEndian, uint32(version))

	// types
	sec := &bytes.Buffer{}
	writeU32(sec, 4)
	writeFuncType(sec, []byte{valI32}, []byte{valI32})
	writeFuncType(sec, []byte{valI32}, nil)
	writeFuncType(sec, []byte{valI32, valI32, valI32}, []byte{valI32})
	writeFuncType(sec, []byte{valI32, valI32, valI32, valI32}, []byte{valI32})
	writeSection(w, secType, sec.Bytes())

	if opts.WASI {
		sec = &bytes.Buffer{}
		writeU32(sec, 1)
		writeName(sec, "wasi_snapshot_preview1")
		writeName(sec, "fd_write")
		sec.WriteByte(kindFunc)
		writeU32(sec, typeFdWrite)
		writeSection(w, secImport, sec.Bytes())
	}

	resampleType := uint32(typeResample)
	if opts.WrongSignature {
		resampleType = typeAlloc
	}
	sec = &bytes.Buffer{}
	writeU32(sec, 4)
	writeU32(sec, typeAlloc)
	writeU32(sec, typeRelease)
	writeU32(sec, typeRelease)
	writeU32(sec, resampleType)
	writeSection(w, secFunction, sec.Bytes())

	// one page, growable
	sec = &bytes.Buffer{}
	writeU32(sec, 1)
	sec.WriteByte(0x00)
	writeU32(sec, 1)
	writeSection(w, secMemory, sec.Bytes())

	sec = &bytes.Buffer{}
	writeU32(sec, 3)
	writeGlobal(sec, HeapBase)
	writeGlobal(sec, 0)
	writeGlobal(sec, 0)
	writeSection(w, secGlobal, sec.Bytes())

	type export struct {
		name string
		kind byte
		idx  uint32
	}
	exports := []export{
		{"memory", kindMemory, 0},
		{"malloc", kindFunc, fnMalloc},
		{"free", kindFunc, fnFree},
	}
	if !opts.OmitJSDel {
		exports = append(exports, export{"jsdel_array", kindFunc, fnJSDel})
	}
	if !opts.OmitResample {
		exports = append(exports, export{"resampleImageWASM", kindFunc, fnResample})
	}
	exports = append(exports,
		export{GlobalLastConfig, kindGlobal, globalLastConfig},
		export{GlobalLastDebug, kindGlobal, globalLastDebug},
	)
	sec = &bytes.Buffer{}
	writeU32(sec, uint32(len(exports)))
	for _, e := range exports {
		writeName(sec, e.name)
		sec.WriteByte(e.kind)
		writeU32(sec, e.idx)
	}
	writeSection(w, secExport, sec.Bytes())

	var resampleBody []byte
	if opts.WrongSignature {
		resampleBody = body(nil, func(b *bytes.Buffer) {
			i32Const(b, 0)
		})
	} else {
		resampleBody = resampleFunc(opts, fnMalloc)
	}

	sec = &bytes.Buffer{}
	writeU32(sec, 4)
	writeBytes(sec, mallocFunc())
	writeBytes(sec, body(nil, func(*bytes.Buffer) {}))
	writeBytes(sec, body(nil, func(*bytes.Buffer) {}))
	writeBytes(sec, resampleBody)
	writeSection(w, secCode, sec.Bytes())

	if opts.WASI {
		sec = &bytes.Buffer{}
		writeU32(sec, 1)
		sec.WriteByte(0x00) // active, memory 0
		i32Const(sec, 0)
		sec.WriteByte(opEnd)
		writeBytes(sec, debugData())
		writeSection(w, secData, sec.Bytes())
	}

	return w.Bytes()
}

// debugData lays out an iovec at 0 pointing at DebugLine stored at 16, with
// the nwritten slot at 8.
func debugData() []byte {
	d := make([]byte, 16+len(DebugLine))
	binary.LittleEndian.PutUint32(d[0:], 16)
	binary.LittleEndian.PutUint32(d[4:], uint32(len(DebugLine)))
	copy(d[16:], DebugLine)
	return d
}

// mallocFunc bumps the heap pointer by size rounded up to 8, growing memory
// when the new end passes the current size. Returns 0 if growth fails.
func mallocFunc() []byte {
	const (
		size = 0
		ptr  = 1
		end  = 2
	)
	return body([]byte{valI32, valI32}, func(b *bytes.Buffer) {
		globalGet(b, globalHeap)
		localSet(b, ptr)

		localGet(b, ptr)
		localGet(b, size)
		b.WriteByte(opI32Add)
		i32Const(b, 7)
		b.WriteByte(opI32Add)
		i32Const(b, -8)
		b.WriteByte(opI32And)
		localSet(b, end)

		b.WriteByte(opBlock)
		b.WriteByte(blockEmpty)
		localGet(b, end)
		memoryBytes(b)
		b.WriteByte(opI32LeU)
		b.WriteByte(opBrIf)
		writeU32(b, 0)

		localGet(b, end)
		memoryBytes(b)
		b.WriteByte(opI32Sub)
		i32Const(b, 65535)
		b.WriteByte(opI32Add)
		i32Const(b, 16)
		b.WriteByte(opI32ShrU)
		b.WriteByte(opMemoryGrow)
		b.WriteByte(0x00)
		i32Const(b, -1)
		b.WriteByte(opI32Ne)
		b.WriteByte(opBrIf)
		writeU32(b, 0)

		i32Const(b, 0)
		b.WriteByte(opReturn)
		b.WriteByte(opEnd)

		localGet(b, end)
		globalSet(b, globalHeap)
		localGet(b, ptr)
	})
}

func resampleFunc(opts Options, fnMalloc uint32) []byte {
	const (
		image  = 0
		config = 1
		debug  = 2
		total  = 3
		out    = 4
	)
	return body([]byte{valI32, valI32}, func(b *bytes.Buffer) {
		localGet(b, config)
		globalSet(b, globalLastConfig)
		localGet(b, debug)
		globalSet(b, globalLastDebug)

		if opts.WASI {
			// if debug != 0: fd_write(1, iovs=0, iovs_len=1, nwritten=8)
			b.WriteByte(opBlock)
			b.WriteByte(blockEmpty)
			localGet(b, debug)
			b.WriteByte(opI32Eqz)
			b.WriteByte(opBrIf)
			writeU32(b, 0)
			i32Const(b, 1)
			i32Const(b, 0)
			i32Const(b, 1)
			i32Const(b, 8)
			b.WriteByte(opCall)
			writeU32(b, 0)
			b.WriteByte(opDrop)
			b.WriteByte(opEnd)
		}

		switch opts.Mode {
		case ModeNull:
			i32Const(b, 0)
			return
		case ModeTrap:
			b.WriteByte(opUnreachable)
			return
		case ModeBadFrame:
			localGet(b, image)
			i32Const(b, 4)
			b.WriteByte(opI32Add)
			return
		}

		// total = 16 + headerSize + dataSize
		localGet(b, image)
		i32Load(b, 8)
		localGet(b, image)
		i32Load(b, 12)
		b.WriteByte(opI32Add)
		i32Const(b, 16)
		b.WriteByte(opI32Add)
		localSet(b, total)

		localGet(b, total)
		b.WriteByte(opCall)
		writeU32(b, fnMalloc)
		localSet(b, out)

		b.WriteByte(opBlock)
		b.WriteByte(blockEmpty)
		localGet(b, out)
		b.WriteByte(opBrIf)
		writeU32(b, 0)
		i32Const(b, 0)
		b.WriteByte(opReturn)
		b.WriteByte(opEnd)

		localGet(b, out)
		localGet(b, image)
		localGet(b, total)
		b.WriteByte(opPrefixFC)
		writeU32(b, memoryCopy)
		b.WriteByte(0x00)
		b.WriteByte(0x00)

		localGet(b, out)
	})
}

// body encodes a function body: locals (one i32 group) followed by the
// instructions emitted by fn and a final end.
func body(locals []byte, fn func(*bytes.Buffer)) []byte {
	b := &bytes.Buffer{}
	if len(locals) == 0 {
		writeU32(b, 0)
	} else {
		writeU32(b, 1)
		writeU32(b, uint32(len(locals)))
		b.WriteByte(valI32)
	}
	fn(b)
	b.WriteByte(opEnd)
	return b.Bytes()
}

func writeSection(w *bytes.Buffer, id byte, data []byte) {
	w.WriteByte(id)
	writeBytes(w, data)
}

func writeFuncType(w *bytes.Buffer, params, results []byte) {
	w.WriteByte(funcByte)
	writeBytes(w, params)
	writeBytes(w, results)
}

func writeGlobal(w *bytes.Buffer, init int32) {
	w.WriteByte(valI32)
	w.WriteByte(0x01) // mutable
	i32Const(w, init)
	w.WriteByte(opEnd)
}

func i32Const(b *bytes.Buffer, v int32) {
	b.WriteByte(opI32Const)
	writeS32(b, v)
}

func localGet(b *bytes.Buffer, idx uint32) {
	b.WriteByte(opLocalGet)
	writeU32(b, idx)
}

func localSet(b *bytes.Buffer, idx uint32) {
	b.WriteByte(opLocalSet)
	writeU32(b, idx)
}

func globalGet(b *bytes.Buffer, idx uint32) {
	b.WriteByte(opGlobalGet)
	writeU32(b, idx)
}

func globalSet(b *bytes.Buffer, idx uint32) {
	b.WriteByte(opGlobalSet)
	writeU32(b, idx)
}

func i32Load(b *bytes.Buffer, offset uint32) {
	b.WriteByte(opI32Load)
	writeU32(b, 2) // align 4
	writeU32(b, offset)
}

// memoryBytes pushes memory.size << 16.
func memoryBytes(b *bytes.Buffer) {
	b.WriteByte(opMemorySize)
	b.WriteByte(0x00)
	i32Const(b, 16)
	b.WriteByte(opI32Shl)
}
