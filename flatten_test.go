package ctype

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type leaf struct {
	Name          string
	Offset, Count int
}

func flattenLeaves(t *Type) ([]leaf, int) {
	var ret []leaf
	n := Flatten(t, func(l *Type, offset, count int) {
		ret = append(ret, leaf{l.Name, offset, count})
	})
	return ret, n
}

func TestFlatten(t *testing.T) {
	r := newTestRegistry(t)
	inner := mustStruct(t, r, "inner",
		MemberDecl{Name: "c", Type: "float"},
		MemberDecl{Name: "d", Type: "double"})
	outer := mustStruct(t, r, "outer",
		MemberDecl{Name: "a", Type: "int32_t"},
		MemberDecl{Name: "b", Type: inner},
		MemberDecl{Name: "e", Type: "int8_t", Len: 2})
	pair := mustStruct(t, r, "pair",
		MemberDecl{Name: "x", Type: "float"},
		MemberDecl{Name: "y", Type: "float"})
	pairs, err := r.MakeArray(pair, 2, HintAuto, NeverIntern)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.DefineOpaque("struct Opaque"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		in    *Type
		want  []leaf
		wantN int
	}{
		{
			name:  "scalar",
			in:    mustResolve(t, r, "double"),
			want:  []leaf{{"double", 0, 1}},
			wantN: 1,
		},
		{
			name:  "pointer",
			in:    mustResolve(t, r, "struct Opaque *"),
			want:  []leaf{{"struct Opaque *", 0, 1}},
			wantN: 1,
		},
		{
			name: "nested",
			in:   outer,
			want: []leaf{
				{"int32_t", 0, 1},
				{"float", 1, 1},
				{"double", 2, 1},
				{"int8_t", 3, 2},
			},
			wantN: 5,
		},
		{
			name: "array of structs",
			in:   pairs,
			want: []leaf{
				{"float", 0, 1},
				{"float", 1, 1},
				{"float", 2, 1},
				{"float", 3, 1},
			},
			wantN: 4,
		},
		{
			name:  "array",
			in:    mustArray(t, r, "float", 3, HintAuto),
			want:  []leaf{{"float", 0, 3}},
			wantN: 3,
		},
	}

	for _, tc := range tests {
		got, n := flattenLeaves(tc.in)
		if diff := cmp.Diff(got, tc.want); diff != "" {
			t.Errorf("Flatten(%s) wrong leaves (-got+want):\n%s", tc.name, diff)
		}
		if n != tc.wantN {
			t.Errorf("Flatten(%s) = %d leaves, want %d", tc.name, n, tc.wantN)
		}
	}

	mustPanic(t, func() { Flatten(mustResolve(t, r, "void"), func(*Type, int, int) {}) })
}

func TestHomogeneousAggregate(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name   string
		fields []MemberDecl
		want   int
	}{
		{"four floats", []MemberDecl{
			{Name: "a", Type: "float"},
			{Name: "b", Type: "float"},
			{Name: "c", Type: "float"},
			{Name: "d", Type: "float"},
		}, 4},
		{"float array", []MemberDecl{
			{Name: "a", Type: "float"},
			{Name: "b", Type: "float", Len: 3},
		}, 4},
		{"two doubles", []MemberDecl{
			{Name: "a", Type: "double"},
			{Name: "b", Type: "double"},
		}, 2},
		{"mixed floats", []MemberDecl{
			{Name: "a", Type: "float"},
			{Name: "b", Type: "double"},
		}, 0},
		{"too many", []MemberDecl{
			{Name: "a", Type: "float", Len: 5},
		}, 0},
		{"int", []MemberDecl{
			{Name: "a", Type: "int32_t"},
			{Name: "b", Type: "float"},
		}, 0},
		{"trailing int", []MemberDecl{
			{Name: "a", Type: "float"},
			{Name: "b", Type: "int32_t"},
		}, 0},
	}
	for _, tc := range tests {
		st := mustStruct(t, r, tc.name, tc.fields...)
		if got := HomogeneousAggregate(st, 1, 4); got != tc.want {
			t.Errorf("HomogeneousAggregate(%s, 1, 4) = %d, want %d", tc.name, got, tc.want)
		}
	}

	if got := HomogeneousAggregate(mustResolve(t, r, "double"), 2, 4); got != 0 {
		t.Errorf("HomogeneousAggregate(double, 2, 4) = %d, want 0", got)
	}
}
