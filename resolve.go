package ctype

import (
	"strings"

	"go.uber.org/zap"
)

// A Direction says which way a parameter's value flows across a
// native call.
type Direction uint8

const (
	In Direction = 1 << iota
	Out
	InOut = In | Out
)

func (d Direction) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	case InOut:
		return "inout"
	default:
		return "none"
	}
}

// A TypeRef is a resolved type, along with the direction it is to be
// passed in.
type TypeRef struct {
	Type *Type
	Dir  Direction
}

// Resolve resolves v to a type. v may be a textual type spec (see
// [Registry.ResolveName]), a *Type, or a TypeRef. Specs and bare
// types resolve as input types.
func (r *Registry) Resolve(v any) (TypeRef, error) {
	switch v := v.(type) {
	case string:
		t, err := r.ResolveName(v)
		if err != nil {
			return TypeRef{}, err
		}
		return TypeRef{t, In}, nil
	case *Type:
		if v != nil {
			return TypeRef{v, In}, nil
		}
	case TypeRef:
		if v.Type != nil {
			if v.Dir == 0 {
				v.Dir = In
			}
			return v, nil
		}
	}
	err := typeErrf(r.DescribeValue(v), ErrNotTypeSpecifier, "unexpected %s value as type specifier", r.DescribeValue(v))
	r.log.Debug("type resolution failed", zap.Error(err))
	return TypeRef{}, err
}

// Out resolves spec as an output parameter type.
func (r *Registry) Out(spec any) (TypeRef, error) {
	return r.resolveDir(spec, Out)
}

// InOut resolves spec as an input/output parameter type.
func (r *Registry) InOut(spec any) (TypeRef, error) {
	return r.resolveDir(spec, InOut)
}

func (r *Registry) resolveDir(spec any, dir Direction) (TypeRef, error) {
	ret, err := r.Resolve(spec)
	if err != nil {
		return TypeRef{}, err
	}
	if !CanPass(ret.Type, dir) {
		return TypeRef{}, typeErrf(ret.Type.Name, ErrUnknownType, "%s parameters must be pointers or strings", dir)
	}
	ret.Dir = dir
	return ret, nil
}

// ResolveName parses a textual type spec and returns the type it
// names.
//
// The spec grammar is:
//
//	[const] base-name {const | "*"} ["!"]
//
// Each "*" adds a level of pointer indirection, and const qualifiers
// are ignored. Whitespace between tokens is optional, and runs of
// whitespace inside multi-word base names such as "unsigned  int"
// are treated as a single space. A trailing "!" asks for a copy of
// the type that frees the native string with the system allocator
// once its value has been read; it is only valid on string types,
// including char and char16_t pointers.
func (r *Registry) ResolveName(spec string) (*Type, error) {
	t, err := r.resolveName(spec)
	if err != nil {
		r.log.Debug("type resolution failed", zap.String("spec", spec), zap.Error(err))
		return nil, err
	}
	return t, nil
}

func (r *Registry) resolveName(spec string) (*Type, error) {
	remain := trimSpace(spec)

	for len(remain) > 5 && strings.HasPrefix(remain, "const") && isSpace(remain[5]) {
		remain = trimSpace(remain[6:])
	}

	dispose := false
	if strings.HasSuffix(remain, "!") {
		dispose = true
		remain = trimSpace(remain[:len(remain)-1])
	}

	indirect := 0
	for remain != "" {
		if remain[len(remain)-1] == '*' {
			remain = remain[:len(remain)-1]
			indirect++
		} else if n := len(remain); n >= 6 && strings.HasSuffix(remain, "const") && isSpace(remain[n-6]) {
			remain = remain[:n-6]
		} else {
			break
		}
		remain = trimSpace(remain)
	}

	t, ok := r.byName[remain]
	if !ok {
		if len(remain) >= r.opts.MaxNormalizedName {
			return nil, typeErrf(spec, ErrNameTooLong, "unregistered name is %d bytes, limit is %d", len(remain), r.opts.MaxNormalizedName)
		}
		t, ok = r.byName[collapseSpace(remain)]
		if !ok {
			return nil, typeErr(spec, ErrUnknownType)
		}
	}

	if indirect > 0 {
		t = r.MakePointer(t, indirect)
	}

	if dispose {
		if t.Kind != String && t.Kind != String16 {
			return nil, typeErrf(spec, ErrInvalidDisposal, "the ! suffix applies only to string types, not %s", t.Kind)
		}
		return r.clone(t, ReleaseSystem), nil
	}

	return t, nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func trimSpace(s string) string {
	for s != "" && isSpace(s[0]) {
		s = s[1:]
	}
	for s != "" && isSpace(s[len(s)-1]) {
		s = s[:len(s)-1]
	}
	return s
}

// collapseSpace replaces every run of whitespace in s with a single
// space.
func collapseSpace(s string) string {
	var ret strings.Builder
	ret.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if !isSpace(s[i]) {
			ret.WriteByte(s[i])
			continue
		}
		ret.WriteByte(' ')
		for i+1 < len(s) && isSpace(s[i+1]) {
			i++
		}
	}
	return ret.String()
}

// CanPass reports whether values of type t can be passed as a
// function parameter in direction dir.
func CanPass(t *Type, dir Direction) bool {
	if dir&Out != 0 {
		return outputKinds.Has(t.Kind)
	}
	switch t.Kind {
	case Void, Array, Prototype:
		return false
	}
	return true
}

// CanReturn reports whether t can be a function's return type. Plain
// void is allowed, opaque types are not.
func CanReturn(t *Type) bool {
	switch t.Kind {
	case Void:
		return t.Name == "void"
	case Array, Prototype:
		return false
	}
	return true
}

// CanStore reports whether values of type t can be stored in memory,
// as a struct member, array element or pointer target that gets
// read.
func CanStore(t *Type) bool {
	switch t.Kind {
	case Void, Prototype:
		return false
	}
	return true
}
