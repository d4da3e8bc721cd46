package ctype

import (
	"slices"
	"unsafe"

	"github.com/danderson/ctype/memory"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configures a Registry. The zero value selects the layout
// of the host process.
type Options struct {
	// PointerSize is the byte width of pointers in the memory being
	// described, 4 or 8. Zero selects the host pointer width.
	PointerSize int
	// MaxTypeSize is the largest byte size an array type may
	// have. Zero selects DefaultMaxTypeSize.
	MaxTypeSize int
	// MaxNormalizedName is the length below which a type name that
	// misses the registry is retried with its whitespace
	// collapsed. Longer names fail with ErrNameTooLong. Zero selects
	// DefaultMaxNormalizedName.
	MaxNormalizedName int
	// Order is the byte order of the memory being described. It
	// decides which of the _le/_be integer names are byte-swapped.
	// Nil selects the host order.
	Order memory.ByteOrder
	// Logger receives debug logs about type construction. Nil
	// disables logging.
	Logger *zap.Logger
}

const (
	DefaultMaxTypeSize       = 64 << 20
	DefaultMaxNormalizedName = 256
)

// A Registry is a set of named C types.
//
// A Registry starts out with the built-in C types, and grows as
// pointer, array and struct types are derived from them. Types are
// never removed.
//
// A Registry is not safe for concurrent use: resolving a spec may
// intern a new derived type. Callers sharing a Registry between
// goroutines must serialize access.
type Registry struct {
	opts Options
	log  *zap.Logger

	// types lists every type created by the registry, interned or
	// not, in creation order.
	types  []*Type
	byName map[string]*Type
	// markers maps handle markers to the name of the first type
	// whose handles carry them.
	markers map[Marker]string

	salt     uuid.UUID
	nextID   uint64
	releases []func(memory.Memory, memory.Addr)
}

// New returns a Registry populated with the built-in types. opts may
// be nil.
func New(opts *Options) *Registry {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.PointerSize == 0 {
		o.PointerSize = int(unsafe.Sizeof(uintptr(0)))
	}
	if o.PointerSize != 4 && o.PointerSize != 8 {
		panic("ctype: pointer size must be 4 or 8")
	}
	if o.MaxTypeSize == 0 {
		o.MaxTypeSize = DefaultMaxTypeSize
	}
	if o.MaxNormalizedName == 0 {
		o.MaxNormalizedName = DefaultMaxNormalizedName
	}
	if o.Order == nil {
		o.Order = memory.NativeEndian
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	ret := &Registry{
		opts:    o,
		log:     o.Logger,
		byName:  map[string]*Type{},
		markers: map[Marker]string{},
		salt:    uuid.New(),
	}
	ret.registerBuiltins()
	return ret
}

// PointerSize returns the pointer width the registry lays types out
// for.
func (r *Registry) PointerSize() int { return r.opts.PointerSize }

// Order returns the byte order the registry lays types out for.
func (r *Registry) Order() memory.ByteOrder { return r.opts.Order }

// Lookup returns the type registered under exactly name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	ret, ok := r.byName[name]
	return ret, ok
}

// Names returns the names of all registered types, including
// aliases, in no particular order.
func (r *Registry) Names() []string {
	ret := make([]string, 0, len(r.byName))
	for n := range r.byName {
		ret = append(ret, n)
	}
	return ret
}

// Types returns every type the registry has created, including
// uninterned array and disposal types, in creation order.
func (r *Registry) Types() []*Type {
	return slices.Clone(r.types)
}

// newType assigns t an identity and records it. It does not make t
// reachable by name.
func (r *Registry) newType(t *Type) *Type {
	r.nextID++
	t.id = r.nextID
	r.types = append(r.types, t)
	if m := t.Marker(); !m.IsZero() {
		if _, ok := r.markers[m]; !ok && t.Kind != Prototype {
			r.markers[m] = t.Name
		}
	}
	return t
}

func (r *Registry) newSignature(s *Signature) *Signature {
	r.nextID++
	s.id = r.nextID
	return s
}

// intern makes t reachable under name. If name is already taken, the
// existing type is returned and t is discarded.
func (r *Registry) intern(name string, t *Type) *Type {
	if prev, ok := r.byName[name]; ok {
		return prev
	}
	if t.id == 0 {
		r.newType(t)
	}
	r.byName[name] = t
	r.log.Debug("interned type", zap.String("name", name), zap.Stringer("kind", t.Kind), zap.Int("size", t.Size))
	return t
}

func (r *Registry) registerBuiltins() {
	ptr := r.opts.PointerSize

	prim := func(kind Kind, size int, names ...string) *Type {
		t := r.newType(&Type{
			Name:  names[0],
			Kind:  kind,
			Size:  size,
			Align: size,
		})
		for _, n := range names {
			r.byName[n] = t
		}
		return t
	}

	prim(Void, 0, "void").Align = 0
	prim(Bool, 1, "bool")
	prim(Int8, 1, "int8_t", "int8")
	prim(Int8, 1, "char").text = true
	prim(UInt8, 1, "uint8_t", "uint8", "uchar", "unsigned char")
	prim(Int16, 2, "char16_t", "char16").text = true
	prim(Int16, 2, "int16_t", "int16", "short")
	prim(UInt16, 2, "uint16_t", "uint16", "ushort", "unsigned short")
	prim(Int32, 4, "int32_t", "int32", "int")
	prim(UInt32, 4, "uint32_t", "uint32", "uint", "unsigned int")
	prim(Int64, 8, "int64_t", "int64", "long long", "longlong")
	prim(UInt64, 8, "uint64_t", "uint64", "unsigned long long", "ulonglong")
	if ptr == 8 {
		prim(Int64, 8, "long", "intptr_t", "ssize_t")
		prim(UInt64, 8, "ulong", "unsigned long", "uintptr_t", "size_t")
	} else {
		prim(Int32, 4, "long", "intptr_t", "ssize_t")
		prim(UInt32, 4, "ulong", "unsigned long", "uintptr_t", "size_t")
	}
	prim(Float32, 4, "float", "float32")
	prim(Float64, 8, "double", "float64")
	// char pointers are strings. Registering the pointer spellings
	// makes MakePointer find them, so "char **" is a pointer to a
	// string.
	prim(String, ptr, "char *", "str", "string")
	prim(String16, ptr, "char16_t *", "char16 *", "str16", "string16")

	// Fixed byte order integers: the name matching the memory's
	// order is the plain kind, the other one is byte-swapped.
	native, foreign := "le", "be"
	if r.opts.Order.Uint16([]byte{0, 1}) == 1 {
		native, foreign = "be", "le"
	}
	for _, k := range []Kind{Int16, UInt16, Int32, UInt32, Int64, UInt64} {
		base := r.byName[builtinFixedName[k]]
		prim(k, base.Size, builtinFixedName[k]+"_"+native+"_t", builtinFixedName[k]+"_"+native)
		prim(swapKinds[k], base.Size, builtinFixedName[k]+"_"+foreign+"_t", builtinFixedName[k]+"_"+foreign)
	}
}

var builtinFixedName = map[Kind]string{
	Int16:  "int16",
	UInt16: "uint16",
	Int32:  "int32",
	UInt32: "uint32",
	Int64:  "int64",
	UInt64: "uint64",
}
