package ctype

// Flatten calls visit for every primitive leaf of t, in declaration
// order, and returns the total number of leaves.
//
// Repeated leaves are reported once with their repeat count: an
// array of 4 float32 is visited as a single float32 leaf with count
// 4. offset is the number of leaves visited before this one, not a
// byte offset.
//
// Flatten panics if t contains a void or prototype leaf, which no
// storable type does.
func Flatten(t *Type, visit func(leaf *Type, offset, count int)) int {
	return flatten(t, 0, 1, visit)
}

func flatten(t *Type, offset, count int, visit func(*Type, int, int)) int {
	switch t.Kind {
	case Record:
		for range count {
			for _, m := range t.Members {
				offset = flatten(m.Type, offset, 1, visit)
			}
		}
	case Array:
		return flatten(t.Elem, offset, count*t.Len(), visit)
	case Void, Prototype:
		invariant("%s leaf %q in flattened type", t.Kind, t.Name)
	default:
		visit(t, offset, count)
		offset += count
	}
	return offset
}

// HomogeneousAggregate reports whether t is a homogeneous floating
// point aggregate with between min and max leaves, inclusive: every
// leaf must be the same floating point kind. It returns the number
// of leaves if so, and 0 otherwise.
//
// The bounds come from the calling convention of the target, for
// example 1 and 4 on arm64.
func HomogeneousAggregate(t *Type, min, max int) int {
	var (
		kind    Kind
		uniform = true
	)
	count := Flatten(t, func(leaf *Type, offset, _ int) {
		switch {
		case !leaf.Kind.IsFloat():
			uniform = false
		case offset == 0:
			kind = leaf.Kind
		case leaf.Kind != kind:
			uniform = false
		}
	})
	if !uniform || count < min || count > max {
		return 0
	}
	return count
}
