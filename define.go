package ctype

import (
	"fmt"
	"slices"
	"strings"

	"github.com/danderson/ctype/fragments"
	"go.uber.org/zap"
)

// A MemberDecl declares a member of a struct type.
type MemberDecl struct {
	// Name is the member name. It must be unique within the struct.
	Name string
	// Type is the member type, as accepted by [Registry.Resolve].
	Type any
	// Len, if positive, makes the member a fixed array of Len
	// elements of Type.
	Len int
	// Hint selects how a fixed array member decodes. The zero value
	// infers the hint from the element type.
	Hint ArrayHint
	// Align, if positive, overrides the member's natural alignment.
	Align int
}

// StructOptions tunes the layout of a struct type.
type StructOptions struct {
	// Packed lays members out with no padding, and gives the struct
	// an alignment of 1.
	Packed bool
}

// DefineStruct registers a struct type under name, with members laid
// out in order according to the C rules: each member is aligned to
// its alignment, and the struct size is rounded up to the largest
// member alignment.
func (r *Registry) DefineStruct(name string, fields []MemberDecl, opts StructOptions) (*Type, error) {
	if err := r.checkName(name); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, typeErrf(name, ErrNotStorable, "struct has no members")
	}

	ret := &Type{
		Name:  name,
		Kind:  Record,
		Align: 1,
	}
	seen := map[string]bool{}
	offset := 0
	for _, f := range fields {
		if f.Name == "" || seen[f.Name] {
			return nil, typeErrf(name, ErrDuplicateName, "invalid or duplicate member name %q", f.Name)
		}
		seen[f.Name] = true

		ref, err := r.Resolve(f.Type)
		if err != nil {
			return nil, fmt.Errorf("member %s of struct %s: %w", f.Name, name, err)
		}
		ft := ref.Type
		if !CanStore(ft) {
			return nil, typeErrf(name, ErrNotStorable, "member %s has type %s", f.Name, ft.Name)
		}
		if f.Len > 0 {
			ft, err = r.MakeArray(ft, f.Len, f.Hint, NeverIntern)
			if err != nil {
				return nil, fmt.Errorf("member %s of struct %s: %w", f.Name, name, err)
			}
		}

		align := ft.Align
		if f.Align > 0 {
			align = f.Align
		}
		if opts.Packed {
			align = 1
		}
		offset = fragments.AlignUp(offset, align)
		ret.Members = append(ret.Members, Member{
			Name:   f.Name,
			Type:   ft,
			Offset: offset,
		})
		offset += ft.Size
		ret.Align = max(ret.Align, align)
	}
	ret.Size = fragments.AlignUp(offset, ret.Align)
	if ret.Size > r.opts.MaxTypeSize {
		return nil, typeErrf(name, ErrNotStorable, "size %d exceeds maximum %d", ret.Size, r.opts.MaxTypeSize)
	}

	return r.intern(name, r.newType(ret)), nil
}

// DefineOpaque registers an opaque type under name. Opaque types have
// no known layout, and are only usable behind a pointer.
func (r *Registry) DefineOpaque(name string) (*Type, error) {
	if err := r.checkName(name); err != nil {
		return nil, err
	}
	return r.intern(name, r.newType(&Type{
		Name: name,
		Kind: Void,
	})), nil
}

// DefineAlias registers an additional name for the type spec
// resolves to.
func (r *Registry) DefineAlias(name string, spec any) (*Type, error) {
	if err := r.checkName(name); err != nil {
		return nil, err
	}
	ref, err := r.Resolve(spec)
	if err != nil {
		return nil, err
	}
	r.byName[name] = ref.Type
	r.log.Debug("registered alias", zap.String("name", name), zap.String("target", ref.Type.Name))
	return ref.Type, nil
}

// DefineCallback registers a function prototype under name. Pointers
// to the prototype are Callback types.
func (r *Registry) DefineCallback(name string, result any, params ...any) (*Type, error) {
	if err := r.checkName(name); err != nil {
		return nil, err
	}
	res, err := r.Resolve(result)
	if err != nil {
		return nil, fmt.Errorf("result of %s: %w", name, err)
	}
	if !CanReturn(res.Type) {
		return nil, typeErrf(name, ErrNotStorable, "%s cannot be returned", res.Type.Name)
	}
	sig := &Signature{
		Name:   name,
		Result: res.Type,
	}
	for i, p := range params {
		ref, err := r.Resolve(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %d of %s: %w", i, name, err)
		}
		if !CanPass(ref.Type, ref.Dir) {
			return nil, typeErrf(name, ErrNotStorable, "%s cannot be passed as parameter %d", ref.Type.Name, i)
		}
		sig.Params = append(sig.Params, ref)
	}
	return r.intern(name, r.newType(&Type{
		Name:  name,
		Kind:  Prototype,
		Proto: r.newSignature(sig),
	})), nil
}

func (r *Registry) checkName(name string) error {
	if name == "" || collapseSpace(trimSpace(name)) != name {
		return typeErrf(name, ErrUnknownType, "type names must be non-empty with single inner spaces")
	}
	if strings.ContainsAny(name, "*[]!") {
		return typeErrf(name, ErrUnknownType, "type names cannot contain pointer, array or disposal syntax")
	}
	if slices.Contains(strings.Fields(name), "const") {
		return typeErrf(name, ErrUnknownType, "type names cannot contain const qualifiers")
	}
	if _, ok := r.byName[name]; ok {
		return typeErr(name, ErrDuplicateName)
	}
	return nil
}
