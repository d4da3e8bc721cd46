package memory

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNative(t *testing.T) {
	buf := []byte{'h', 'i', 0, 'h', 0, 'i', 0, 0, 0}
	addr := AddrOf(buf)

	var freed []Addr
	m := Native{Release: func(a Addr) { freed = append(freed, a) }}

	if diff := cmp.Diff(m.Read(addr, 3), buf[:3]); diff != "" {
		t.Errorf("Read wrong bytes (-got+want):\n%s", diff)
	}
	if diff := cmp.Diff(m.Terminated(addr, 1), []byte("hi")); diff != "" {
		t.Errorf("Terminated(1) wrong bytes (-got+want):\n%s", diff)
	}
	if diff := cmp.Diff(m.Terminated(addr+3, 2), []byte{'h', 0, 'i', 0}); diff != "" {
		t.Errorf("Terminated(2) wrong bytes (-got+want):\n%s", diff)
	}

	m.Free(0)
	m.Free(addr)
	if diff := cmp.Diff(freed, []Addr{addr}); diff != "" {
		t.Errorf("wrong released addresses (-got+want):\n%s", diff)
	}
	Native{}.Free(addr)

	if AddrOf(nil) != 0 {
		t.Errorf("AddrOf(nil) is not null")
	}
	mustPanic(t, "null read", func() { m.Read(0, 1) })
}

func TestByteOrder(t *testing.T) {
	if LittleEndian.Swapped() != BigEndian || BigEndian.Swapped() != LittleEndian {
		t.Errorf("Swapped is not an involution")
	}
	if LittleEndian.IsHost() == BigEndian.IsHost() {
		t.Errorf("exactly one of LittleEndian and BigEndian must be the host order")
	}
	if !NativeEndian.IsHost() {
		t.Errorf("NativeEndian is not the host order")
	}
	if got := BigEndian.Uint16([]byte{1, 2}); got != 0x0102 {
		t.Errorf("BigEndian.Uint16 = %#x, want 0x0102", got)
	}
	if got := LittleEndian.AppendUint32(nil, 1); got[0] != 1 {
		t.Errorf("LittleEndian.AppendUint32 = %x", got)
	}
}
