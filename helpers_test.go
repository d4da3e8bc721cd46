package ctype

import (
	"testing"

	"github.com/danderson/ctype/fragments"
	"github.com/danderson/ctype/memory"
	"go.uber.org/zap/zaptest"
)

// newTestRegistry returns a little-endian, 64-bit Registry that logs
// to t.
func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(&Options{
		PointerSize: 8,
		Order:       memory.LittleEndian,
		Logger:      zaptest.NewLogger(t),
	})
}

// newTestArena returns an empty little-endian arena.
func newTestArena() *memory.Arena {
	return memory.NewArena(memory.LittleEndian, 0)
}

// encoder returns an Encoder matching newTestRegistry's layout.
func encoder() *fragments.Encoder {
	return &fragments.Encoder{
		Order:       memory.LittleEndian,
		PointerSize: 8,
	}
}

func mustResolve(t *testing.T, r *Registry, spec string) *Type {
	t.Helper()
	ret, err := r.ResolveName(spec)
	if err != nil {
		t.Fatalf("ResolveName(%q) got err: %v", spec, err)
	}
	return ret
}

func mustStruct(t *testing.T, r *Registry, name string, fields ...MemberDecl) *Type {
	t.Helper()
	ret, err := r.DefineStruct(name, fields, StructOptions{})
	if err != nil {
		t.Fatalf("DefineStruct(%q) got err: %v", name, err)
	}
	return ret
}

func mustArray(t *testing.T, r *Registry, elem string, n int, hint ArrayHint) *Type {
	t.Helper()
	ret, err := r.MakeArray(mustResolve(t, r, elem), n, hint, NeverIntern)
	if err != nil {
		t.Fatalf("MakeArray(%q, %d) got err: %v", elem, n, err)
	}
	return ret
}

// mustPanic runs fn and fails the test if it doesn't panic with an
// invariantError.
func mustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatal("function did not panic")
		}
		if _, ok := r.(invariantError); !ok {
			t.Fatalf("function panicked with %T (%v), want invariantError", r, r)
		}
	}()
	fn()
}
