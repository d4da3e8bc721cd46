package ctype

import (
	"fmt"
	"slices"
	"strings"

	"github.com/danderson/ctype/memory"
	"go.uber.org/zap"
)

// MakePointer returns the type of count levels of pointers to base.
// Each level is interned, under the name "T *", "T **" and so on.
//
// Pointers to a function prototype, at any depth, are Callback types
// rather than pointers to callbacks, so that they remain directly
// callable. Pointers to a disposal type are never interned, since
// every disposal type shares the name "<anonymous>".
//
// MakePointer panics if count is less than 1.
func (r *Registry) MakePointer(base *Type, count int) *Type {
	if count < 1 {
		invariant("pointer type with %d levels of indirection", count)
	}

	anonymous := base.Dispose.IsSet()
	ref := base
	for range count {
		name := ref.Name + " *"
		if strings.HasSuffix(ref.Name, "*") {
			name = ref.Name + "*"
		}
		if t, ok := r.byName[name]; ok && !anonymous {
			if !pointerKinds.Has(t.Kind) {
				invariant("%q is registered as %s, not a pointer", name, t.Kind)
			}
			ref = t
			continue
		}

		t := &Type{
			Name:  name,
			Size:  r.opts.PointerSize,
			Align: r.opts.PointerSize,
		}
		if ref.Kind == Prototype || ref.Kind == Callback {
			t.Kind = Callback
			t.Proto = ref.Proto
		} else {
			t.Kind = Pointer
			t.Elem = ref
		}
		if anonymous {
			ref = r.newType(t)
		} else {
			ref = r.intern(name, r.newType(t))
		}
	}
	return ref
}

// An InternPolicy says whether a derived type is made reachable by
// name.
type InternPolicy uint8

const (
	// AlwaysIntern returns the registered type for the derived name,
	// registering it on first use.
	AlwaysIntern InternPolicy = iota
	// NeverIntern returns a fresh type that is not reachable by name.
	NeverIntern
)

// MakeArray returns the type of an array of length elements of type
// elem.
//
// HintAuto selects HintString for char and char16_t elements and
// HintTypedArray for everything else. Interned arrays are registered
// as "T[len]" and always carry the inferred hint: with AlwaysIntern,
// a hint that differs from the inferred one yields an uninterned
// type, since the name alone cannot distinguish hints. Arrays of a
// disposal type are never interned.
//
// MakeArray returns a TypeError if elem cannot be stored, if the
// array would be empty or larger than the registry's MaxTypeSize, or
// if its name is registered to a type that is not an array.
func (r *Registry) MakeArray(elem *Type, length int, hint ArrayHint, policy InternPolicy) (*Type, error) {
	name := fmt.Sprintf("%s[%d]", elem.Name, length)
	if !CanStore(elem) || elem.Size == 0 {
		return nil, typeErrf(name, ErrNotStorable, "%s cannot be an array element", elem.Name)
	}
	if length < 1 || length > r.opts.MaxTypeSize/elem.Size {
		return nil, typeErrf(name, ErrArrayLength, "length must be between 1 and %d", r.opts.MaxTypeSize/elem.Size)
	}

	inferred := HintTypedArray
	if elem.text {
		inferred = HintString
	}
	if hint == HintAuto {
		hint = inferred
	}
	if elem.Dispose.IsSet() {
		policy = NeverIntern
	}
	if policy == AlwaysIntern && hint == inferred {
		if t, ok := r.byName[name]; ok {
			if t.Kind != Array {
				return nil, typeErrf(name, ErrDuplicateName, "registered as %s, not an array", t.Kind)
			}
			return t, nil
		}
	}

	t := r.newType(r.makeArray(name, elem, length, hint))
	if policy == AlwaysIntern && hint == inferred {
		t = r.intern(name, t)
	}
	return t, nil
}

func (r *Registry) makeArray(name string, elem *Type, length int, hint ArrayHint) *Type {
	if length < 1 || length > r.opts.MaxTypeSize/elem.Size {
		invariant("array %s exceeds size limits", name)
	}
	return &Type{
		Name:  name,
		Kind:  Array,
		Size:  length * elem.Size,
		Align: elem.Align,
		Elem:  elem,
		Hint:  hint,
	}
}

// Array is shorthand for MakeArray(elem, length, HintAuto,
// AlwaysIntern).
func (r *Registry) Array(elem *Type, length int) (*Type, error) {
	return r.MakeArray(elem, length, HintAuto, AlwaysIntern)
}

type disposalKind uint8

const (
	disposeNone disposalKind = iota
	disposeSystem
	disposeCallback
)

// A Disposal says how native memory is released after a value has
// been copied out of it.
type Disposal struct {
	kind   disposalKind
	handle ReleaseHandle
}

// A ReleaseHandle identifies a release function registered with
// [Registry.RegisterRelease].
type ReleaseHandle int

var (
	// NoDisposal leaves native memory alone.
	NoDisposal = Disposal{}
	// ReleaseSystem frees native memory with the memory's own
	// allocator, see [memory.Memory.Free].
	ReleaseSystem = Disposal{kind: disposeSystem}
)

// ReleaseCallback releases native memory by calling the function
// registered under h.
func ReleaseCallback(h ReleaseHandle) Disposal {
	return Disposal{disposeCallback, h}
}

// IsSet reports whether d releases anything.
func (d Disposal) IsSet() bool {
	return d.kind != disposeNone
}

func (d Disposal) String() string {
	switch d.kind {
	case disposeNone:
		return "none"
	case disposeSystem:
		return "system"
	default:
		return fmt.Sprintf("callback#%d", d.handle)
	}
}

// RegisterRelease registers fn as a release function, for use with
// ReleaseCallback. fn is given ownership of the native address just
// read, which may be 0 for null values.
func (r *Registry) RegisterRelease(fn func(mem memory.Memory, addr memory.Addr)) ReleaseHandle {
	r.releases = append(r.releases, fn)
	return ReleaseHandle(len(r.releases) - 1)
}

// Dispose returns an uninterned copy of t that runs d after each
// value of the type is decoded. t must be a string, a callback, or a
// single level pointer.
func (r *Registry) Dispose(t *Type, d Disposal) (*Type, error) {
	if !disposableKinds.Has(t.Kind) || (t.Kind == Pointer && t.Elem.Kind == Pointer) {
		return nil, typeErr(t.Name, ErrInvalidDisposal)
	}
	if d.kind == disposeCallback && (int(d.handle) < 0 || int(d.handle) >= len(r.releases)) {
		return nil, typeErrf(t.Name, ErrInvalidDisposal, "unknown release handle %d", d.handle)
	}
	return r.clone(t, d), nil
}

// clone returns an anonymous copy of t with the given disposal.
func (r *Registry) clone(t *Type, d Disposal) *Type {
	ret := *t
	ret.Name = "<anonymous>"
	ret.Members = slices.Clone(t.Members)
	ret.Dispose = d
	ret.id = 0
	r.log.Debug("created disposal type", zap.String("source", t.Name), zap.Stringer("disposal", d))
	return r.newType(&ret)
}

// release runs the disposal hook of t on addr.
func (r *Registry) release(mem memory.Memory, t *Type, addr memory.Addr) {
	switch t.Dispose.kind {
	case disposeNone:
	case disposeSystem:
		mem.Free(addr)
	case disposeCallback:
		r.releases[t.Dispose.handle](mem, addr)
	}
}
