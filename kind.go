package ctype

import (
	"fmt"

	"github.com/creachadair/mds/mapset"
)

// A Kind is the primitive category of a C type.
type Kind uint8

const (
	Void Kind = iota
	Bool
	Int8
	UInt8
	Int16
	Int16S
	UInt16
	UInt16S
	Int32
	Int32S
	UInt32
	UInt32S
	Int64
	Int64S
	UInt64
	UInt64S
	String
	String16
	Pointer
	Record
	Array
	Float32
	Float64
	// Callback is a pointer to a function with a known prototype.
	Callback
	// Prototype is a function signature. It is only usable behind
	// a pointer, or as the referent of a Callback.
	Prototype
)

var kindNames = [...]string{
	Void:      "Void",
	Bool:      "Bool",
	Int8:      "Int8",
	UInt8:     "UInt8",
	Int16:     "Int16",
	Int16S:    "Int16S",
	UInt16:    "UInt16",
	UInt16S:   "UInt16S",
	Int32:     "Int32",
	Int32S:    "Int32S",
	UInt32:    "UInt32",
	UInt32S:   "UInt32S",
	Int64:     "Int64",
	Int64S:    "Int64S",
	UInt64:    "UInt64",
	UInt64S:   "UInt64S",
	String:    "String",
	String16:  "String16",
	Pointer:   "Pointer",
	Record:    "Record",
	Array:     "Array",
	Float32:   "Float32",
	Float64:   "Float64",
	Callback:  "Callback",
	Prototype: "Prototype",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

var (
	// swappedKinds maps byte-swapped integer kinds to the kind they
	// represent once swapped.
	swappedKinds = map[Kind]Kind{
		Int16S:  Int16,
		UInt16S: UInt16,
		Int32S:  Int32,
		UInt32S: UInt32,
		Int64S:  Int64,
		UInt64S: UInt64,
	}

	// swapKinds is the inverse of swappedKinds.
	swapKinds = map[Kind]Kind{
		Int16:  Int16S,
		UInt16: UInt16S,
		Int32:  Int32S,
		UInt32: UInt32S,
		Int64:  Int64S,
		UInt64: UInt64S,
	}

	floatKinds = mapset.New(Float32, Float64)

	// outputKinds can be passed as output or input/output
	// parameters.
	outputKinds = mapset.New(Pointer, String, String16)

	// pointerKinds are pointer sized references to other memory.
	pointerKinds = mapset.New(Pointer, Callback, String, String16)

	// disposableKinds can carry a disposal hook. Pointer types
	// additionally require a single level of indirection.
	disposableKinds = mapset.New(String, String16, Pointer, Callback)

	// numericKinds are stored in the memory's byte order, and need
	// converting when copied into host-order buffers.
	numericKinds = mapset.New(
		Int16, Int16S, UInt16, UInt16S,
		Int32, Int32S, UInt32, UInt32S,
		Int64, Int64S, UInt64, UInt64S,
		Float32, Float64,
	)

	// textElemKinds can back a text buffer.
	textElemKinds = mapset.New(Int8, UInt8, Int16, UInt16)
)

// IsSwapped reports whether k is stored in the opposite byte order
// to the memory it lives in.
func (k Kind) IsSwapped() bool {
	_, ok := swappedKinds[k]
	return ok
}

// Unswapped returns the kind k represents once byte-swapped. Kinds
// that are not byte-swapped are returned unchanged.
func (k Kind) Unswapped() Kind {
	if ret, ok := swappedKinds[k]; ok {
		return ret
	}
	return k
}

// IsFloat reports whether k is a floating point kind.
func (k Kind) IsFloat() bool {
	return floatKinds.Has(k)
}
