package ctype

import (
	"bytes"
	"slices"
	"unicode/utf16"
	"unsafe"

	"github.com/danderson/ctype/fragments"
	"github.com/danderson/ctype/memory"
)

// A Decoder converts C values in native memory into Go values.
//
// Decoding is total: any type produced by a Registry decodes without
// error, provided the memory really holds a value of that type. Reading
// outside of mem is a caller bug, and panics.
//
// Values of types with a disposal hook are released right after they
// are copied out, so each such value must be decoded exactly once.
type Decoder struct {
	types *Registry
	mem   memory.Memory
}

// NewDecoder returns a Decoder that reads values of types from r out
// of mem. r must describe memory of mem's byte order.
func (r *Registry) NewDecoder(mem memory.Memory) *Decoder {
	probe := []byte{0, 1}
	if mem.Order().Uint16(probe) != r.opts.Order.Uint16(probe) {
		panic("ctype: registry and memory byte orders differ")
	}
	return &Decoder{r, mem}
}

func (d *Decoder) at(origin memory.Addr) *fragments.Decoder {
	return &fragments.Decoder{
		Mem:         d.mem,
		Origin:      origin,
		PointerSize: d.types.PointerSize(),
	}
}

// Value decodes the value of type t stored at origin.
func (d *Decoder) Value(origin memory.Addr, t *Type) any {
	return d.value(d.at(origin), t, 0)
}

// Record decodes the struct of type t stored at origin.
//
// If realign is non-zero, member i is read at origin+i*realign
// instead of at its natural offset, and nested arrays use realign as
// their minimum element alignment.
func (d *Decoder) Record(origin memory.Addr, t *Type, realign int) Object {
	if t.Kind != Record {
		invariant("decoding %s as a struct", t.Name)
	}
	fd := d.at(origin)
	ret := make(Object, 0, len(t.Members))
	for i, m := range t.Members {
		if realign != 0 {
			fd.Seek(i * realign)
		} else {
			fd.Seek(m.Offset)
		}
		ret = append(ret, Field{m.Name, d.value(fd, m.Type, realign)})
	}
	return ret
}

// Array decodes the array of type t stored at origin.
//
// Text arrays of char or char16_t decode to a string, which ends at
// the first NUL character or at the end of the array. Numeric arrays
// of non byte-swapped 8 to 32 bit integers or floats decode to a
// typed slice such as []int32, provided realign is zero. Everything
// else decodes to a []any.
//
// Elements are read at consecutive offsets, each aligned up to the
// larger of realign and the element's alignment.
func (d *Decoder) Array(origin memory.Addr, t *Type, realign int) any {
	if t.Kind != Array {
		invariant("decoding %s as an array", t.Name)
	}
	elem := t.Elem

	switch {
	case t.Hint == HintString && textElemKinds.Has(elem.Kind):
		return d.text(origin, elem.Size, t.Len())
	case t.Hint == HintTypedArray && realign == 0 && !elem.Kind.IsSwapped():
		if ret := d.typedArray(origin, elem, t.Len()); ret != nil {
			return ret
		}
	}

	ret := make([]any, t.Len())
	d.FillArray(ret, origin, elem, realign)
	return ret
}

// FillArray decodes len(dst) consecutive values of type elem, starting
// at origin, into dst.
func (d *Decoder) FillArray(dst []any, origin memory.Addr, elem *Type, realign int) {
	fd := d.at(origin)
	align := max(realign, elem.Align)
	for i := range dst {
		fd.Pad(align)
		start := fd.Offset()
		dst[i] = d.value(fd, elem, realign)
		fd.Seek(start + elem.Size)
	}
}

// Buffer copies the raw elements of type elem starting at origin into
// buf, which must hold a whole number of elements.
//
// If realign is non-zero, source elements are read at offsets aligned
// to realign rather than packed. Numeric elements are converted to
// the host byte order, which includes reversing byte-swapped kinds.
func (d *Decoder) Buffer(buf []byte, origin memory.Addr, elem *Type, realign int) {
	step := elem.Size
	if realign != 0 {
		offset := 0
		for i := 0; i+step <= len(buf); i += step {
			offset = fragments.AlignUp(offset, realign)
			copy(buf[i:i+step], d.mem.Read(origin+memory.Addr(offset), step))
			offset += step
		}
	} else {
		copy(buf, d.mem.Read(origin, len(buf)))
	}

	if !numericKinds.Has(elem.Kind) {
		return
	}
	swap := elem.Kind.IsSwapped()
	if !d.mem.Order().IsHost() {
		swap = !swap
	}
	if !swap || step < 2 {
		return
	}
	for i := 0; i+step <= len(buf); i += step {
		slices.Reverse(buf[i : i+step])
	}
}

func (d *Decoder) value(fd *fragments.Decoder, t *Type, realign int) any {
	switch t.Kind {
	case Bool:
		return fd.Bool()
	case Int8:
		return float64(int8(fd.Uint8()))
	case UInt8:
		return float64(fd.Uint8())
	case Int16, Int16S:
		return float64(int16(fd.Uint16(t.Kind == Int16S)))
	case UInt16, UInt16S:
		return float64(fd.Uint16(t.Kind == UInt16S))
	case Int32, Int32S:
		return float64(int32(fd.Uint32(t.Kind == Int32S)))
	case UInt32, UInt32S:
		return float64(fd.Uint32(t.Kind == UInt32S))
	case Int64, Int64S:
		return int64(fd.Uint64(t.Kind == Int64S))
	case UInt64, UInt64S:
		return fd.Uint64(t.Kind == UInt64S)
	case Float32:
		return float64(fd.Float32())
	case Float64:
		return fd.Float64()
	case String, String16:
		addr := fd.Pointer()
		var ret any
		if addr != 0 {
			if t.Kind == String {
				ret = string(d.mem.Terminated(addr, 1))
			} else {
				ret = d.utf16(d.mem.Terminated(addr, 2))
			}
		}
		d.types.release(d.mem, t, addr)
		return ret
	case Pointer, Callback:
		addr := fd.Pointer()
		var ret any
		if addr != 0 {
			h := &Handle{Addr: addr}
			d.types.Tag(h, t.Marker())
			ret = h
		}
		d.types.release(d.mem, t, addr)
		return ret
	case Record:
		return d.Record(fd.Addr(), t, realign)
	case Array:
		return d.Array(fd.Addr(), t, realign)
	}
	invariant("decoding %s value of type %q", t.Kind, t.Name)
	return nil
}

// text decodes a NUL-terminated string of 1 or 2 byte units, bounded
// by n units.
func (d *Decoder) text(origin memory.Addr, width, n int) string {
	bs := d.mem.Read(origin, width*n)
	if width == 1 {
		if i := bytes.IndexByte(bs, 0); i >= 0 {
			bs = bs[:i]
		}
		return string(bs)
	}
	for i := 0; i+1 < len(bs); i += 2 {
		if bs[i] == 0 && bs[i+1] == 0 {
			bs = bs[:i]
			break
		}
	}
	return d.utf16(bs)
}

func (d *Decoder) utf16(bs []byte) string {
	units := make([]uint16, len(bs)/2)
	for i := range units {
		units[i] = d.mem.Order().Uint16(bs[2*i:])
	}
	return string(utf16.Decode(units))
}

// typedArray decodes n numeric elements into a typed slice, or
// returns nil if elem has no typed slice representation.
func (d *Decoder) typedArray(origin memory.Addr, elem *Type, n int) any {
	switch elem.Kind {
	case Int8:
		return fillTyped[int8](d, origin, elem, n)
	case UInt8:
		return fillTyped[uint8](d, origin, elem, n)
	case Int16:
		return fillTyped[int16](d, origin, elem, n)
	case UInt16:
		return fillTyped[uint16](d, origin, elem, n)
	case Int32:
		return fillTyped[int32](d, origin, elem, n)
	case UInt32:
		return fillTyped[uint32](d, origin, elem, n)
	case Float32:
		return fillTyped[float32](d, origin, elem, n)
	case Float64:
		return fillTyped[float64](d, origin, elem, n)
	}
	return nil
}

func fillTyped[T int8 | uint8 | int16 | uint16 | int32 | uint32 | float32 | float64](d *Decoder, origin memory.Addr, elem *Type, n int) []T {
	ret := make([]T, n)
	var zero T
	buf := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(ret))), n*int(unsafe.Sizeof(zero)))
	d.Buffer(buf, origin, elem, 0)
	return ret
}
