// Package memory provides the native memory spaces that C values are
// decoded from.
//
// A [Memory] is a flat address space. Addresses are plain integers,
// with 0 standing for the null pointer. Reads outside the space are a
// caller bug: implementations panic rather than return errors, since
// the layout of everything that is read is fixed by a type the caller
// already vouched for.
package memory

import "fmt"

// An Addr is an address in a Memory.
type Addr uint64

func (a Addr) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

// Memory is a native address space.
type Memory interface {
	// Order returns the byte order of multi-byte values stored in
	// the memory.
	Order() ByteOrder
	// Read returns the n bytes starting at addr. The returned slice
	// may alias the memory and must not be retained or modified.
	Read(addr Addr, n int) []byte
	// Terminated returns the elements of the given width starting at
	// addr, up to but excluding the first all-zero element.
	Terminated(addr Addr, width int) []byte
	// Free releases an allocation previously handed out by native
	// code. Free(0) does nothing.
	Free(addr Addr)
}

// outOfRange panics with a description of an invalid access.
func outOfRange(addr Addr, n int) {
	panic(fmt.Sprintf("memory access out of range: %d bytes at %s", n, addr))
}

// terminated scans read for the first zero element of the given
// width, fetching chunk bytes at a time through read. read returns
// false when addr is outside the memory.
func terminated(addr Addr, width int, read func(Addr, int) ([]byte, bool)) []byte {
	var ret []byte
	for {
		elem, ok := read(addr, width)
		if !ok {
			outOfRange(addr, width)
		}
		if isZero(elem) {
			return ret
		}
		ret = append(ret, elem...)
		addr += Addr(width)
	}
}

func isZero(bs []byte) bool {
	for _, b := range bs {
		if b != 0 {
			return false
		}
	}
	return true
}
