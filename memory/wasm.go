package memory

import (
	"github.com/tetratelabs/wazero/api"
)

// Wasm is the linear memory of a WebAssembly module instance. Wasm
// addresses are 32 bits wide and values are little endian, so
// registries decoding out of a Wasm memory should be configured with
// a 4 byte pointer size and LittleEndian order.
type Wasm struct {
	Mem api.Memory
	// Release frees guest memory, typically by calling the guest's
	// exported free function. If nil, Free does nothing.
	Release func(Addr)
}

// Order implements Memory.
func (Wasm) Order() ByteOrder { return LittleEndian }

// Read implements Memory.
func (m Wasm) Read(addr Addr, n int) []byte {
	bs, ok := m.read(addr, n)
	if !ok {
		outOfRange(addr, n)
	}
	return bs
}

// Terminated implements Memory.
func (m Wasm) Terminated(addr Addr, width int) []byte {
	return terminated(addr, width, m.read)
}

// Free implements Memory.
func (m Wasm) Free(addr Addr) {
	if addr == 0 || m.Release == nil {
		return
	}
	m.Release(addr)
}

func (m Wasm) read(addr Addr, n int) ([]byte, bool) {
	if addr > 0xffffffff || n < 0 || uint64(n) > 0xffffffff {
		return nil, false
	}
	return m.Mem.Read(uint32(addr), uint32(n))
}
