package ctype

import (
	"reflect"
)

// Tag stamps h with marker, so that CheckTag(h, marker) reports true
// for this registry. Any previous tag is replaced.
func (r *Registry) Tag(h *Handle, marker Marker) {
	if marker.IsZero() {
		invariant("tagging handle with zero marker")
	}
	h.tag = handleTag{r.salt, marker}
}

// CheckTag reports whether v is a handle tagged with marker by this
// registry. Nil values, including nil handles, report false.
func (r *Registry) CheckTag(v any, marker Marker) bool {
	h, ok := v.(*Handle)
	if !ok || h == nil {
		return false
	}
	return h.tag == handleTag{r.salt, marker}
}

// DescribeValue returns a short human-readable name for the type of
// v, for use in error messages. It never fails.
//
// Casts report their target type, types report "Type", and handles
// report the first registered type whose values carry the handle's
// tag. Everything else reports a coarse category such as "Array",
// "Int32Array" or "Number".
//
// v need not come from a Decoder: callers also describe values they
// are about to pass to native code, so categories such as
// "BigInt64Array" exist even though decoded 64-bit arrays are []any.
func (r *Registry) DescribeValue(v any) string {
	switch v := v.(type) {
	case *Cast:
		if v != nil && v.Type != nil {
			return v.Type.Name
		}
	case *Type, TypeRef:
		return "Type"
	case *Handle:
		if v != nil && v.tag.salt == r.salt {
			if name, ok := r.markers[v.tag.marker]; ok {
				return name
			}
		}
		if v != nil {
			return "External"
		}
	}

	switch v := v.(type) {
	case nil:
		return "Null"
	case []any:
		return "Array"
	case []int8:
		return "Int8Array"
	case []uint8:
		return "Uint8Array"
	case []int16:
		return "Int16Array"
	case []uint16:
		return "Uint16Array"
	case []int32:
		return "Int32Array"
	case []uint32:
		return "Uint32Array"
	case []float32:
		return "Float32Array"
	case []float64:
		return "Float64Array"
	// Never produced by decoding, only supplied by callers.
	case []int64:
		return "BigInt64Array"
	case []uint64:
		return "BigUint64Array"
	case bool:
		return "Boolean"
	case float64, float32, int, int8, int16, int32, uint, uint8, uint16, uint32:
		return "Number"
	case int64, uint64:
		return "BigInt"
	case string:
		return "String"
	case Object, map[string]any:
		return "Object"
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Func:
		return "Function"
	case reflect.Array, reflect.Slice:
		return "Array"
	case reflect.Struct, reflect.Map:
		return "Object"
	case reflect.Pointer:
		if reflect.ValueOf(v).IsNil() {
			return "Null"
		}
		return "Object"
	}
	return "Unknown"
}
