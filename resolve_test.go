package ctype

import (
	"errors"
	"strings"
	"testing"
)

func TestResolveName(t *testing.T) {
	r := newTestRegistry(t)
	if _, err := r.DefineOpaque("struct Foo"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		spec      string
		wantName  string
		wantKind  Kind
		wantDepth int
	}{
		{"int32_t", "int32_t", Int32, 0},
		{"int", "int32_t", Int32, 0},
		{"  double  ", "double", Float64, 0},
		{"unsigned   int", "uint32_t", UInt32, 0},
		{"unsigned\tlong  long", "uint64_t", UInt64, 0},
		{"const int32_t", "int32_t", Int32, 0},
		{"const const int32_t", "int32_t", Int32, 0},
		{"const char *", "char *", String, 0},
		{"char*", "char *", String, 0},
		{"const char16_t *", "char16_t *", String16, 0},
		{"char **", "char **", Pointer, 1},
		{"int32_t *", "int32_t *", Pointer, 1},
		{"int32_t**", "int32_t **", Pointer, 2},
		{"int32_t * *", "int32_t **", Pointer, 2},
		{"const int32_t * const *", "int32_t **", Pointer, 2},
		{"int32_t * const", "int32_t *", Pointer, 1},
		{"struct Foo", "struct Foo", Void, 0},
		{"struct Foo **", "struct Foo **", Pointer, 2},
		{"struct   Foo  *", "struct Foo *", Pointer, 1},
		{"void *", "void *", Pointer, 1},
		{"int16_be", "int16_be_t", Int16S, 0},
		{"uint32_le_t", "uint32_le_t", UInt32, 0},
		{"size_t", "ulong", UInt64, 0},
	}

	for _, tc := range tests {
		got, err := r.ResolveName(tc.spec)
		if err != nil {
			t.Errorf("ResolveName(%q) got err: %v", tc.spec, err)
			continue
		}
		if got.Name != tc.wantName || got.Kind != tc.wantKind || got.Indirection() != tc.wantDepth {
			t.Errorf("ResolveName(%q) = %#v, want name %q kind %s depth %d", tc.spec, got, tc.wantName, tc.wantKind, tc.wantDepth)
		} else if testing.Verbose() {
			t.Logf("ResolveName(%q) = %#v", tc.spec, got)
		}
		if canon, ok := r.Lookup(got.Name); !ok || canon != got {
			t.Errorf("ResolveName(%q) = %p, not the canonical %q type %p", tc.spec, got, got.Name, canon)
		}
	}
}

func TestResolveNameIdentity(t *testing.T) {
	r := newTestRegistry(t)
	for _, spec := range []string{"int32_t", "double **", "char *", "char16_t **"} {
		a := mustResolve(t, r, spec)
		b := mustResolve(t, r, spec)
		if a != b {
			t.Errorf("ResolveName(%q) returned distinct types %p and %p", spec, a, b)
		}
	}

	i32 := mustResolve(t, r, "int32_t")
	if got, want := r.MakePointer(i32, 3), r.MakePointer(r.MakePointer(i32, 1), 2); got != want {
		t.Errorf("MakePointer(int32_t, 3) = %p, MakePointer(MakePointer(int32_t, 1), 2) = %p", got, want)
	}
	if got, want := r.MakePointer(i32, 2), mustResolve(t, r, "int32_t **"); got != want {
		t.Errorf("MakePointer(int32_t, 2) = %p, ResolveName = %p", got, want)
	}
	if got := r.MakePointer(i32, 2).Elem; got != mustResolve(t, r, "int32_t *") {
		t.Errorf("int32_t ** has elem %v, want int32_t *", got)
	}

	mustPanic(t, func() { r.MakePointer(i32, 0) })
}

func TestResolveNameDisposal(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		spec string
		want Kind
	}{
		{"char*!", String},
		{"const char * !", String},
		{"char16_t *!", String16},
		{"str!", String},
	}
	for _, tc := range tests {
		got := mustResolve(t, r, tc.spec)
		if got.Kind != tc.want || got.Dispose != ReleaseSystem || got.Name != "<anonymous>" {
			t.Errorf("ResolveName(%q) = %#v dispose=%s, want anonymous %s with system disposal", tc.spec, got, got.Dispose, tc.want)
		}
		if plain := mustResolve(t, r, strings.TrimSuffix(tc.spec, "!")); plain == got || plain.Dispose.IsSet() {
			t.Errorf("ResolveName(%q) disposal leaked into the plain type", tc.spec)
		}
	}

	if a, b := mustResolve(t, r, "char *!"), mustResolve(t, r, "char *!"); a == b {
		t.Errorf("disposal types are shared, want a fresh type per resolution")
	}
}

func TestResolveNameErrors(t *testing.T) {
	r := newTestRegistry(t)
	if _, err := r.DefineOpaque("struct Foo"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		spec string
		want error
	}{
		{"", ErrUnknownType},
		{"*", ErrUnknownType},
		{"nope", ErrUnknownType},
		{"nope *", ErrUnknownType},
		{"constint32_t", ErrUnknownType},
		{"int32*!", ErrInvalidDisposal},
		{"int32!", ErrInvalidDisposal},
		{"struct Foo **!", ErrInvalidDisposal},
		{"char **!", ErrInvalidDisposal},
		{strings.Repeat("x", 300), ErrNameTooLong},
		{strings.Repeat("x ", 150) + "*", ErrNameTooLong},
	}

	for _, tc := range tests {
		got, err := r.ResolveName(tc.spec)
		if !errors.Is(err, tc.want) {
			t.Errorf("ResolveName(%q) = %v, %v; want err %v", tc.spec, got, err, tc.want)
			continue
		}
		var te TypeError
		if !errors.As(err, &te) {
			t.Errorf("ResolveName(%q) err %T is not a TypeError", tc.spec, err)
		} else if te.Spec != tc.spec {
			t.Errorf("ResolveName(%q) TypeError.Spec = %q", tc.spec, te.Spec)
		}
		if testing.Verbose() {
			t.Logf("ResolveName(%q) err: %v", tc.spec, err)
		}
	}
}

func TestResolve(t *testing.T) {
	r := newTestRegistry(t)
	i32 := mustResolve(t, r, "int32_t")

	for _, in := range []any{"int", i32, TypeRef{Type: i32}} {
		got, err := r.Resolve(in)
		if err != nil {
			t.Errorf("Resolve(%v) got err: %v", in, err)
			continue
		}
		if got.Type != i32 || got.Dir != In {
			t.Errorf("Resolve(%v) = %v/%s, want int32_t/in", in, got.Type, got.Dir)
		}
	}

	for _, in := range []any{42, nil, (*Type)(nil), []int32{1}, TypeRef{}} {
		_, err := r.Resolve(in)
		if !errors.Is(err, ErrNotTypeSpecifier) {
			t.Errorf("Resolve(%#v) got err %v, want ErrNotTypeSpecifier", in, err)
		} else if testing.Verbose() {
			t.Logf("Resolve(%#v) err: %v", in, err)
		}
	}

	out, err := r.Out("int32_t *")
	if err != nil || out.Dir != Out || out.Type.Elem != i32 {
		t.Errorf("Out(int32_t *) = %v/%s, %v", out.Type, out.Dir, err)
	}
	inout, err := r.InOut("char *")
	if err != nil || inout.Dir != InOut || inout.Type.Kind != String {
		t.Errorf("InOut(char *) = %v/%s, %v", inout.Type, inout.Dir, err)
	}
	if _, err := r.Out("int32_t"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Out(int32_t) got err %v, want ErrUnknownType", err)
	}
	if got, err := r.Resolve(out); err != nil || got != out {
		t.Errorf("Resolve(TypeRef) = %v, %v; want passthrough", got, err)
	}
}

func TestCanPassReturnStore(t *testing.T) {
	r := newTestRegistry(t)
	foo, err := r.DefineOpaque("struct Foo")
	if err != nil {
		t.Fatal(err)
	}
	cb, err := r.DefineCallback("cb", "void", "int")
	if err != nil {
		t.Fatal(err)
	}
	arr := mustArray(t, r, "int", 4, HintAuto)

	tests := []struct {
		t                        *Type
		pass, out, ret, canStore bool
	}{
		{mustResolve(t, r, "void"), false, false, true, false},
		{foo, false, false, false, false},
		{mustResolve(t, r, "int"), true, false, true, true},
		{mustResolve(t, r, "int *"), true, true, true, true},
		{mustResolve(t, r, "char *"), true, true, true, true},
		{arr, false, false, false, true},
		{cb, false, false, false, false},
		{mustResolve(t, r, "cb *"), true, false, true, true},
	}
	for _, tc := range tests {
		if got := CanPass(tc.t, In); got != tc.pass {
			t.Errorf("CanPass(%s, In) = %v, want %v", tc.t, got, tc.pass)
		}
		if got := CanPass(tc.t, Out); got != tc.out {
			t.Errorf("CanPass(%s, Out) = %v, want %v", tc.t, got, tc.out)
		}
		if got := CanReturn(tc.t); got != tc.ret {
			t.Errorf("CanReturn(%s) = %v, want %v", tc.t, got, tc.ret)
		}
		if got := CanStore(tc.t); got != tc.canStore {
			t.Errorf("CanStore(%s) = %v, want %v", tc.t, got, tc.canStore)
		}
	}
}

func TestCollapseSpace(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"int", "int"},
		{"unsigned  int", "unsigned int"},
		{"a \t\n b", "a b"},
		{"a b c", "a b c"},
	}
	for _, tc := range tests {
		if got := collapseSpace(tc.in); got != tc.want {
			t.Errorf("collapseSpace(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
