package memory

import "unsafe"

// Native is the address space of the running process. Addresses are
// raw pointers obtained from native code.
//
// Reads through Native are only as safe as the addresses given to
// it: pointing it at unmapped memory crashes the process.
type Native struct {
	// Release frees memory allocated by native code, typically by
	// calling the C library's free. If nil, Free does nothing.
	Release func(Addr)
}

// Order implements Memory.
func (Native) Order() ByteOrder { return NativeEndian }

// Read implements Memory.
func (Native) Read(addr Addr, n int) []byte {
	if addr == 0 {
		outOfRange(addr, n)
	}
	// addr comes from native code and is not managed by the Go
	// garbage collector.
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), n)
}

// Terminated implements Memory.
func (m Native) Terminated(addr Addr, width int) []byte {
	return terminated(addr, width, func(addr Addr, n int) ([]byte, bool) {
		if addr == 0 {
			return nil, false
		}
		return m.Read(addr, n), true
	})
}

// Free implements Memory.
func (m Native) Free(addr Addr) {
	if addr == 0 || m.Release == nil {
		return
	}
	m.Release(addr)
}

// AddrOf returns the address of the first byte of bs. The caller must
// keep bs alive for as long as the address is used.
func AddrOf(bs []byte) Addr {
	if len(bs) == 0 {
		return 0
	}
	return Addr(uintptr(unsafe.Pointer(&bs[0])))
}
