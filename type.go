package ctype

import (
	"fmt"
	"strings"
)

// A Type describes the layout of a C type.
//
// Types are canonical: a Registry hands out a single *Type per name,
// so types can be compared by pointer. A Type must not be modified
// once the Registry has returned it.
type Type struct {
	// Name is the unique name of the type within its Registry.
	// Disposal clones are named "<anonymous>".
	Name string
	// Kind is the primitive category of the type.
	Kind Kind
	// Size is the byte size of the type.
	Size int
	// Align is the byte alignment of the type.
	Align int

	// Members are the fields of a Record, in declaration order.
	Members []Member
	// Elem is the referent of a Pointer, or the element type of an
	// Array.
	Elem *Type
	// Proto is the signature of a Prototype or Callback.
	Proto *Signature
	// Hint selects how an Array decodes.
	Hint ArrayHint
	// Dispose is the hook run after a value of this type has been
	// copied out of native memory.
	Dispose Disposal

	id   uint64
	text bool // element type for text buffers
}

// A Member is a field of a Record type.
type Member struct {
	Name   string
	Type   *Type
	Offset int
}

// A Signature is the prototype of a C function.
type Signature struct {
	Name   string
	Result *Type
	Params []TypeRef

	id uint64
}

func (s *Signature) String() string {
	var ret strings.Builder
	ret.WriteString(s.Result.Name)
	ret.WriteString(" (")
	for i, p := range s.Params {
		if i > 0 {
			ret.WriteString(", ")
		}
		if p.Dir != In {
			ret.WriteString(p.Dir.String())
			ret.WriteString(" ")
		}
		ret.WriteString(p.Type.Name)
	}
	ret.WriteString(")")
	return ret.String()
}

// An ArrayHint selects the value an Array type decodes to.
type ArrayHint uint8

const (
	// HintAuto selects HintString for character element types, and
	// HintTypedArray otherwise. It is only meaningful as an argument
	// to [Registry.MakeArray]; types never carry it.
	HintAuto ArrayHint = iota
	// HintArray decodes to a []any.
	HintArray
	// HintTypedArray decodes numeric elements to a typed slice such
	// as []int32.
	HintTypedArray
	// HintString decodes character elements to a string.
	HintString
)

func (h ArrayHint) String() string {
	switch h {
	case HintAuto:
		return "Auto"
	case HintArray:
		return "Array"
	case HintTypedArray:
		return "TypedArray"
	case HintString:
		return "String"
	default:
		return fmt.Sprintf("ArrayHint(%d)", uint8(h))
	}
}

// A Marker is the identity stamped onto handle values, so that a
// handle can later be checked against the type it was produced for.
type Marker struct {
	id uint64
}

// IsZero reports whether m is the zero Marker, which no value
// carries.
func (m Marker) IsZero() bool {
	return m.id == 0
}

// Marker returns the identity stamped on handles decoded from values
// of type t. Pointers are marked with their referent, callbacks with
// their prototype. Other types have the zero Marker.
func (t *Type) Marker() Marker {
	switch t.Kind {
	case Pointer:
		return Marker{t.Elem.id}
	case Callback, Prototype:
		return Marker{t.Proto.id}
	}
	return Marker{}
}

// Len returns the number of elements of an Array type, and 0 for
// other types.
func (t *Type) Len() int {
	if t.Kind != Array || t.Elem.Size == 0 {
		return 0
	}
	return t.Size / t.Elem.Size
}

// Member returns the Record member with the given name.
func (t *Type) Member(name string) (Member, bool) {
	for _, m := range t.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// Indirection returns the number of pointer levels between t and its
// ultimate non-pointer referent.
func (t *Type) Indirection() int {
	ret := 0
	for t.Kind == Pointer {
		ret++
		t = t.Elem
	}
	return ret
}

func (t *Type) String() string {
	return t.Name
}

// GoString returns a detailed description of the type, for
// debugging.
func (t *Type) GoString() string {
	var ret strings.Builder
	fmt.Fprintf(&ret, "%s{%s size=%d align=%d", t.Name, t.Kind, t.Size, t.Align)
	switch t.Kind {
	case Pointer:
		fmt.Fprintf(&ret, " elem=%s", t.Elem.Name)
	case Array:
		fmt.Fprintf(&ret, " elem=%s len=%d hint=%s", t.Elem.Name, t.Len(), t.Hint)
	case Callback, Prototype:
		fmt.Fprintf(&ret, " proto=%s", t.Proto)
	case Record:
		for _, m := range t.Members {
			fmt.Fprintf(&ret, " %s:%s@%d", m.Name, m.Type.Name, m.Offset)
		}
	}
	if t.Dispose.IsSet() {
		fmt.Fprintf(&ret, " dispose=%s", t.Dispose)
	}
	ret.WriteString("}")
	return ret.String()
}
