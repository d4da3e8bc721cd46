package ctype

import (
	"fmt"
	"strings"

	"github.com/danderson/ctype/memory"
	"github.com/google/uuid"
)

// Decoded values use the following Go representations:
//
//	null pointer, string          nil
//	bool                          bool
//	8 to 32 bit integers, floats  float64
//	64 bit integers               int64, uint64
//	strings, text buffers         string
//	structs                       Object
//	arrays                        []any, or a typed slice for numeric buffers
//	pointers, callbacks           *Handle

// An Object is a decoded struct: its members in declaration order.
type Object []Field

// A Field is one member of a decoded Object. Unlike [Member] and
// [MemberDecl], which describe a member's layout, a Field holds its
// decoded value.
type Field struct {
	Name  string
	Value any
}

// Get returns the value of the member with the given name.
func (o Object) Get(name string) (any, bool) {
	for _, f := range o {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Map returns the object's members as a map.
func (o Object) Map() map[string]any {
	ret := make(map[string]any, len(o))
	for _, f := range o {
		ret[f.Name] = f.Value
	}
	return ret
}

func (o Object) String() string {
	var ret strings.Builder
	ret.WriteString("{")
	for i, f := range o {
		if i > 0 {
			ret.WriteString(", ")
		}
		fmt.Fprintf(&ret, "%s: %v", f.Name, f.Value)
	}
	ret.WriteString("}")
	return ret.String()
}

// A Handle is an opaque native pointer.
//
// Handles produced by decoding carry a hidden tag identifying the
// type they were decoded as, see [Registry.CheckTag]. The tag can
// only be set by a Registry, and is only recognized by the Registry
// that set it.
type Handle struct {
	Addr memory.Addr

	tag handleTag
}

type handleTag struct {
	salt   uuid.UUID
	marker Marker
}

func (h *Handle) String() string {
	return fmt.Sprintf("Handle(%s)", h.Addr)
}

// A Cast pairs a value with the type it should be passed as,
// overriding the type a function declares for that parameter.
type Cast struct {
	Value any
	Type  *Type
}

// Cast returns v wrapped to be passed as spec.
func (r *Registry) Cast(v any, spec any) (*Cast, error) {
	ref, err := r.Resolve(spec)
	if err != nil {
		return nil, err
	}
	return &Cast{v, ref.Type}, nil
}
