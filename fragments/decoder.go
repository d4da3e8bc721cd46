package fragments

import (
	"math"
	"math/bits"

	"github.com/danderson/ctype/memory"
)

// A Decoder reads C values out of a [memory.Memory], relative to an
// origin address.
//
// Methods read at the current cursor and advance it by the width of
// the value read. Unlike C itself, a Decoder never pads implicitly:
// callers position the cursor with [Decoder.Seek] or [Decoder.Pad]
// according to the layout they are walking.
type Decoder struct {
	// Mem is the memory to read.
	Mem memory.Memory
	// Origin is the address that offsets are relative to.
	Origin memory.Addr
	// PointerSize is the width in bytes of pointers stored in Mem,
	// either 4 or 8.
	PointerSize int

	offset int
}

// Offset returns the cursor position relative to Origin.
func (d *Decoder) Offset() int {
	return d.offset
}

// Addr returns the address of the cursor.
func (d *Decoder) Addr() memory.Addr {
	return d.Origin + memory.Addr(d.offset)
}

// Seek moves the cursor to offset bytes past Origin.
func (d *Decoder) Seek(offset int) {
	d.offset = offset
}

// Pad advances the cursor as needed to make it a multiple of align
// bytes past Origin. If the cursor is already aligned, Pad does
// nothing.
func (d *Decoder) Pad(align int) {
	d.offset = AlignUp(d.offset, align)
}

// Skip advances the cursor by n bytes.
func (d *Decoder) Skip(n int) {
	d.offset += n
}

// Read reads n bytes verbatim. The returned slice may alias the
// underlying memory and must not be retained.
func (d *Decoder) Read(n int) []byte {
	ret := d.Mem.Read(d.Addr(), n)
	d.offset += n
	return ret
}

// Bool reads a one byte C bool.
func (d *Decoder) Bool() bool {
	return d.Uint8() != 0
}

// Uint8 reads a uint8.
func (d *Decoder) Uint8() uint8 {
	return d.Read(1)[0]
}

// Uint16 reads a uint16 in the memory's byte order. If swap is true,
// the value is byte-reversed after reading.
func (d *Decoder) Uint16(swap bool) uint16 {
	ret := d.Mem.Order().Uint16(d.Read(2))
	if swap {
		ret = bits.ReverseBytes16(ret)
	}
	return ret
}

// Uint32 reads a uint32 in the memory's byte order. If swap is true,
// the value is byte-reversed after reading.
func (d *Decoder) Uint32(swap bool) uint32 {
	ret := d.Mem.Order().Uint32(d.Read(4))
	if swap {
		ret = bits.ReverseBytes32(ret)
	}
	return ret
}

// Uint64 reads a uint64 in the memory's byte order. If swap is true,
// the value is byte-reversed after reading.
func (d *Decoder) Uint64(swap bool) uint64 {
	ret := d.Mem.Order().Uint64(d.Read(8))
	if swap {
		ret = bits.ReverseBytes64(ret)
	}
	return ret
}

// Float32 reads an IEEE 754 single precision float.
func (d *Decoder) Float32() float32 {
	return math.Float32frombits(d.Uint32(false))
}

// Float64 reads an IEEE 754 double precision float.
func (d *Decoder) Float64() float64 {
	return math.Float64frombits(d.Uint64(false))
}

// Pointer reads a pointer of width PointerSize.
func (d *Decoder) Pointer() memory.Addr {
	if d.PointerSize == 4 {
		return memory.Addr(d.Uint32(false))
	}
	return memory.Addr(d.Uint64(false))
}

// At returns a new Decoder whose origin is the current cursor
// address.
func (d *Decoder) At() *Decoder {
	return &Decoder{
		Mem:         d.Mem,
		Origin:      d.Addr(),
		PointerSize: d.PointerSize,
	}
}

// AlignUp rounds n up to the next multiple of align. Alignments
// below 2 leave n unchanged.
func AlignUp(n, align int) int {
	if align < 2 {
		return n
	}
	if extra := n % align; extra != 0 {
		n += align - extra
	}
	return n
}
