// Package ctypegen generates Go declarations that mirror the memory
// layout of C struct types.
package ctypegen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"strings"
	"unicode"

	"github.com/danderson/ctype"
)

type generator struct {
	out  bytes.Buffer
	done map[*ctype.Type]bool
}

// Struct returns Go type declarations for the C struct t, preceded
// by declarations for the structs it embeds.
//
// The generated structs have the same size and member offsets as
// their C counterparts: C padding becomes blank byte array fields,
// and members that Go would align differently are declared as byte
// arrays. Pointers and strings become unsigned integers of the
// pointer width.
func Struct(t *ctype.Type) (string, error) {
	if t == nil || t.Kind != ctype.Record {
		return "", errors.New("not a struct type")
	}
	g := generator{done: map[*ctype.Type]bool{}}
	g.Struct(t)

	ret, err := format.Source(g.out.Bytes())
	if err != nil {
		return g.out.String(), err
	}
	return strings.TrimSpace(string(ret)) + "\n", nil
}

func (g *generator) s(s string) {
	g.out.WriteString(s)
}

func (g *generator) f(msg string, args ...any) {
	fmt.Fprintf(&g.out, msg, args...)
}

func (g *generator) Struct(t *ctype.Type) {
	if g.done[t] {
		return
	}
	g.done[t] = true
	for _, m := range t.Members {
		if inner := record(m.Type); inner != nil {
			g.Struct(inner)
		}
	}

	g.f("// %s mirrors the C type %s (%d bytes, align %d).\n", typeName(t.Name), t.Name, t.Size, t.Align)
	g.f("type %s struct {\n", typeName(t.Name))
	offset := 0
	seen := map[string]bool{}
	for i, m := range t.Members {
		if m.Offset > offset {
			g.f("_ [%d]byte\n", m.Offset-offset)
		}
		name := fieldName(i, m.Name, seen)
		switch {
		case m.Type.Align > 1 && m.Offset%m.Type.Align != 0:
			g.f("%s [%d]byte // %s, unaligned\n", name, m.Type.Size, m.Type.Name)
		default:
			g.f("%s %s", name, goType(m.Type))
			if c := comment(m.Type); c != "" {
				g.f(" // %s", c)
			}
			g.s("\n")
		}
		offset = m.Offset + m.Type.Size
	}
	if t.Size > offset {
		g.f("_ [%d]byte\n", t.Size-offset)
	}
	g.s("}\n\n")
}

// record returns the struct type at the bottom of t's array
// dimensions, or nil.
func record(t *ctype.Type) *ctype.Type {
	for t.Kind == ctype.Array {
		t = t.Elem
	}
	if t.Kind == ctype.Record {
		return t
	}
	return nil
}

func goType(t *ctype.Type) string {
	switch t.Kind.Unswapped() {
	case ctype.Bool:
		return "bool"
	case ctype.Int8:
		return "int8"
	case ctype.UInt8:
		return "uint8"
	case ctype.Int16:
		return "int16"
	case ctype.UInt16:
		return "uint16"
	case ctype.Int32:
		return "int32"
	case ctype.UInt32:
		return "uint32"
	case ctype.Int64:
		return "int64"
	case ctype.UInt64:
		return "uint64"
	case ctype.Float32:
		return "float32"
	case ctype.Float64:
		return "float64"
	case ctype.String, ctype.String16, ctype.Pointer, ctype.Callback:
		return fmt.Sprintf("uint%d", t.Size*8)
	case ctype.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), goType(t.Elem))
	case ctype.Record:
		return typeName(t.Name)
	}
	return fmt.Sprintf("[%d]byte", t.Size)
}

// comment returns a note for member types whose Go representation
// loses information.
func comment(t *ctype.Type) string {
	for t.Kind == ctype.Array {
		t = t.Elem
	}
	switch {
	case t.Kind.IsSwapped():
		return t.Name + ", byte-swapped"
	case t.Kind == ctype.String, t.Kind == ctype.String16, t.Kind == ctype.Pointer, t.Kind == ctype.Callback:
		return t.Name
	}
	return ""
}

func fieldName(n int, name string, seen map[string]bool) string {
	ret := publicIdentifier(name)
	if ret == "" || ret == "_" {
		ret = fmt.Sprintf("Field%d", n)
	}
	for seen[ret] {
		ret += "_"
	}
	seen[ret] = true
	return ret
}

func typeName(s string) string {
	for _, prefix := range []string{"struct ", "union "} {
		s = strings.TrimPrefix(s, prefix)
	}
	return publicIdentifier(strings.ReplaceAll(s, " ", "_"))
}

func identifier(s string) string {
	fs := strings.Split(s, "_")
	for i := range fs {
		if i == 0 {
			fst := true
			fs[i] = strings.Map(func(r rune) rune {
				if fst {
					fst = false
					return unicode.ToLower(r)
				}
				return r
			}, fs[i])
		} else {
			switch fs[i] {
			case "id":
				fs[i] = "ID"
			default:
				fs[i] = strings.Title(fs[i])
			}
		}
	}
	return strings.Join(fs, "")
}

func publicIdentifier(s string) string {
	return strings.Title(identifier(s))
}
