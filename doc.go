// Package ctype describes C types at runtime, and decodes C values
// out of native memory.
//
// A [Registry] holds named C types. It starts out with the built-in
// integer, float, bool and string types, and resolves textual type
// specs such as "const char *", "struct Foo **" or "char *!" by
// deriving pointer types on demand:
//
//	reg := ctype.New(nil)
//	pt, err := reg.DefineStruct("Point", []ctype.MemberDecl{
//		{Name: "x", Type: "int32_t"},
//		{Name: "y", Type: "double"},
//	}, ctype.StructOptions{})
//	ref, err := reg.Resolve("Point *")
//
// Struct and array types can be flattened into their scalar leaves
// with [Flatten], which is the basis of calling convention decisions
// such as [HomogeneousAggregate].
//
// A [Decoder] turns memory holding a C value into a Go value. Structs
// decode to [Object], arrays to slices or strings, and pointers to
// [Handle] values tagged with the type they were decoded as:
//
//	dec := reg.NewDecoder(mem)
//	obj := dec.Record(addr, pt, 0)
//	x, _ := obj.Get("x") // float64(7)
//
// # Type specs
//
// A type spec is a type name, optionally preceded by any number of
// "const" qualifiers and followed by any number of "*" (each optionally
// followed by "const"), and finally an optional "!". The "!" marks
// values of the type as owned by the caller: after decoding, they are
// released with the memory's Free. Only strings can be marked this
// way in a spec; [Registry.Dispose] attaches other disposal hooks.
//
// Runs of whitespace in names are insignificant, so "struct  Foo" and
// "struct Foo" name the same type.
//
// # Memory
//
// Decoders read through the [memory.Memory] interface. The memory
// package provides an in-process Arena for building images, a Native
// memory reading the host process, and a Wasm memory reading a
// WebAssembly module instance's linear memory.
package ctype
