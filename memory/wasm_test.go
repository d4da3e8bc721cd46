package memory

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tetratelabs/wazero"
)

// oneMemoryModule is a WebAssembly module that exports a single page
// of linear memory as "memory".
var oneMemoryModule = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 memory, min 1 page
	0x07, 0x0a, 0x01, // export section: 1 export
	0x06, 'm', 'e', 'm', 'o', 'r', 'y',
	0x02, 0x00, // memory 0
}

func TestWasm(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, err := rt.Instantiate(ctx, oneMemoryModule)
	if err != nil {
		t.Fatalf("instantiating test module: %v", err)
	}
	guest := mod.ExportedMemory("memory")
	if guest == nil {
		t.Fatal("test module has no exported memory")
	}
	if !guest.Write(0x100, []byte("wasm\x00")) || !guest.WriteUint32Le(0x200, 0xdeadbeef) {
		t.Fatal("writing guest memory failed")
	}

	var freed []Addr
	m := Wasm{Mem: guest, Release: func(a Addr) { freed = append(freed, a) }}

	if m.Order() != LittleEndian {
		t.Errorf("Wasm order is %v, want LittleEndian", m.Order())
	}
	if got := m.Order().Uint32(m.Read(0x200, 4)); got != 0xdeadbeef {
		t.Errorf("Read(0x200) = %#x, want 0xdeadbeef", got)
	}
	if diff := cmp.Diff(m.Terminated(0x100, 1), []byte("wasm")); diff != "" {
		t.Errorf("Terminated wrong bytes (-got+want):\n%s", diff)
	}
	m.Free(0x100)
	if diff := cmp.Diff(freed, []Addr{0x100}); diff != "" {
		t.Errorf("wrong released addresses (-got+want):\n%s", diff)
	}

	mustPanic(t, "read past end of memory", func() { m.Read(65535, 2) })
	mustPanic(t, "read past 32 bits", func() { m.Read(1<<32, 1) })
	mustPanic(t, "unterminated at end of memory", func() {
		guest.Write(65535, []byte{1})
		m.Terminated(65535, 1)
	})
}
