package memory

import (
	"fmt"
	"slices"
	"unicode/utf16"
)

// DefaultBase is the address of the first byte of an Arena created
// with a zero base.
const DefaultBase Addr = 0x10000

// An Arena is a Memory backed by a Go byte slice. Allocations are
// handed out bump-style and never reused, so a freed address can be
// recognized for the lifetime of the Arena.
//
// Arenas are used to build memory images for tests and for the
// ctype command, and stand in for native memory wherever a real
// process address space isn't available.
type Arena struct {
	order ByteOrder
	base  Addr
	buf   []byte
	live  map[Addr]bool
	freed []Addr
}

// NewArena returns an empty Arena whose first byte lives at base. A
// zero base selects DefaultBase.
func NewArena(order ByteOrder, base Addr) *Arena {
	if order == nil {
		order = NativeEndian
	}
	if base == 0 {
		base = DefaultBase
	}
	return &Arena{
		order: order,
		base:  base,
		live:  map[Addr]bool{},
	}
}

// Order implements Memory.
func (a *Arena) Order() ByteOrder { return a.order }

// Base returns the address of the first byte of the arena.
func (a *Arena) Base() Addr { return a.base }

// End returns the address one past the last allocated byte.
func (a *Arena) End() Addr { return a.base + Addr(len(a.buf)) }

// Alloc reserves n zeroed bytes aligned to align, and returns their
// address.
func (a *Arena) Alloc(n, align int) Addr {
	if align < 1 {
		align = 1
	}
	end := int(a.End())
	if extra := end % align; extra != 0 {
		a.buf = append(a.buf, make([]byte, align-extra)...)
	}
	ret := a.End()
	a.buf = append(a.buf, make([]byte, n)...)
	a.live[ret] = true
	return ret
}

// Put copies bs into a fresh allocation aligned to align, and returns
// its address.
func (a *Arena) Put(bs []byte, align int) Addr {
	ret := a.Alloc(len(bs), align)
	a.Write(ret, bs)
	return ret
}

// CString stores s followed by a NUL byte, and returns its address.
func (a *Arena) CString(s string) Addr {
	bs := append([]byte(s), 0)
	return a.Put(bs, 1)
}

// CString16 stores s as NUL-terminated UTF-16 in the arena's byte
// order, and returns its address.
func (a *Arena) CString16(s string) Addr {
	units := utf16.Encode([]rune(s))
	bs := make([]byte, 0, 2*len(units)+2)
	for _, u := range units {
		bs = a.order.AppendUint16(bs, u)
	}
	bs = append(bs, 0, 0)
	return a.Put(bs, 2)
}

// Write copies bs into the arena at addr. The destination must
// already be allocated.
func (a *Arena) Write(addr Addr, bs []byte) {
	copy(a.slice(addr, len(bs)), bs)
}

// Read implements Memory.
func (a *Arena) Read(addr Addr, n int) []byte {
	return a.slice(addr, n)
}

// Terminated implements Memory.
func (a *Arena) Terminated(addr Addr, width int) []byte {
	return terminated(addr, width, func(addr Addr, n int) ([]byte, bool) {
		if !a.contains(addr, n) {
			return nil, false
		}
		return a.slice(addr, n), true
	})
}

// Free implements Memory. Freeing an address that was not returned
// by Alloc, or freeing it twice, panics.
func (a *Arena) Free(addr Addr) {
	if addr == 0 {
		return
	}
	if !a.live[addr] {
		panic(fmt.Sprintf("free of unallocated or already freed address %s", addr))
	}
	delete(a.live, addr)
	a.freed = append(a.freed, addr)
}

// Freed returns the addresses released through Free, in call order.
func (a *Arena) Freed() []Addr {
	return slices.Clone(a.freed)
}

// Bytes returns the arena's contents. The slice aliases the arena.
func (a *Arena) Bytes() []byte {
	return a.buf
}

func (a *Arena) contains(addr Addr, n int) bool {
	return addr >= a.base && n >= 0 && addr+Addr(n) <= a.End()
}

func (a *Arena) slice(addr Addr, n int) []byte {
	if !a.contains(addr, n) {
		outOfRange(addr, n)
	}
	off := int(addr - a.base)
	return a.buf[off : off+n : off+n]
}
