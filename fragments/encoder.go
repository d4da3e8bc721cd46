package fragments

import (
	"math"

	"github.com/danderson/ctype/memory"
)

// An Encoder lays out C values in a byte slice, for later placement
// in a [memory.Memory].
//
// Methods insert padding as needed to naturally align each value,
// except for [Encoder.Write] which outputs bytes verbatim. Natural
// alignment matches the default layout of C structs on all supported
// targets.
type Encoder struct {
	// Order is the byte order to use when encoding multi-byte values.
	Order memory.ByteOrder
	// PointerSize is the width in bytes of encoded pointers, either
	// 4 or 8.
	PointerSize int
	// Out is the encoded output.
	Out []byte
}

// Pad inserts zero bytes as needed to make the output a multiple of
// align bytes. If the output is already correctly aligned, no
// padding is inserted.
func (e *Encoder) Pad(align int) {
	if n := AlignUp(len(e.Out), align) - len(e.Out); n > 0 {
		e.Out = append(e.Out, make([]byte, n)...)
	}
}

// Write writes bs as-is to the output. It is the caller's
// responsibility to ensure correct padding and encoding.
func (e *Encoder) Write(bs []byte) {
	e.Out = append(e.Out, bs...)
}

// Bool writes a one byte C bool.
func (e *Encoder) Bool(b bool) {
	if b {
		e.Uint8(1)
	} else {
		e.Uint8(0)
	}
}

// Uint8 writes a uint8.
func (e *Encoder) Uint8(u8 uint8) {
	e.Out = append(e.Out, u8)
}

// Uint16 writes uint16.
func (e *Encoder) Uint16(u16 uint16) {
	e.Pad(2)
	e.Out = e.Order.AppendUint16(e.Out, u16)
}

// Uint32 writes uint32.
func (e *Encoder) Uint32(u32 uint32) {
	e.Pad(4)
	e.Out = e.Order.AppendUint32(e.Out, u32)
}

// Uint64 writes uint64.
func (e *Encoder) Uint64(u64 uint64) {
	e.Pad(8)
	e.Out = e.Order.AppendUint64(e.Out, u64)
}

// Float32 writes an IEEE 754 single precision float.
func (e *Encoder) Float32(f float32) {
	e.Uint32(math.Float32bits(f))
}

// Float64 writes an IEEE 754 double precision float.
func (e *Encoder) Float64(f float64) {
	e.Uint64(math.Float64bits(f))
}

// Pointer writes an address of width PointerSize.
func (e *Encoder) Pointer(addr memory.Addr) {
	if e.PointerSize == 4 {
		e.Uint32(uint32(addr))
	} else {
		e.Uint64(uint64(addr))
	}
}

// Struct writes a struct to the output.
//
// Struct fields must be added within the provided fields function.
// Struct pads the output to align before and after the fields, so
// that the encoded size is a multiple of the struct's alignment.
func (e *Encoder) Struct(align int, fields func()) {
	e.Pad(align)
	start := len(e.Out)
	fields()
	if n := AlignUp(len(e.Out)-start, align) - (len(e.Out) - start); n > 0 {
		e.Out = append(e.Out, make([]byte, n)...)
	}
}
