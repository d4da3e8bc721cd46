// Package typelib loads C type declarations from YAML files.
//
// A type library declares named types, in dependency order:
//
//	types:
//	  - name: struct Conn
//	    opaque: true
//	  - name: conn_t
//	    alias: struct Conn *
//	  - name: point
//	    fields:
//	      - {name: x, type: int32_t}
//	      - {name: y, type: double}
//	      - {name: label, type: char, len: 16}
//	  - name: visit_fn
//	    callback:
//	      result: int
//	      params: [const point *, out int *]
//
// Each declaration is exactly one of an opaque type, an alias, a
// struct (fields, optionally packed) or a callback prototype.
package typelib

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/danderson/ctype"
	"gopkg.in/yaml.v3"
)

// Library is a parsed type library.
type Library struct {
	// Types are the declared types, in registration order.
	Types []Decl `yaml:"types"`
}

// Decl declares one named type.
type Decl struct {
	// Name is the type name, for example "struct Foo" or "point".
	Name string `yaml:"name"`

	// Opaque declares a type with no known layout, only usable
	// behind a pointer.
	Opaque bool `yaml:"opaque,omitempty"`

	// Alias declares Name as another name for the given type spec.
	Alias string `yaml:"alias,omitempty"`

	// Fields declares a struct with the given members.
	Fields []FieldDecl `yaml:"fields,omitempty"`
	// Packed removes all padding from a struct. Only valid with
	// Fields.
	Packed bool `yaml:"packed,omitempty"`

	// Callback declares a function prototype.
	Callback *CallbackDecl `yaml:"callback,omitempty"`
}

// FieldDecl declares a struct member.
type FieldDecl struct {
	Name string `yaml:"name"`
	// Type is the member's type spec.
	Type string `yaml:"type"`
	// Len, if positive, makes the member a fixed array.
	Len int `yaml:"len,omitempty"`
	// Hint selects how a fixed array decodes: "auto" (the default),
	// "array", "typed" or "string".
	Hint string `yaml:"hint,omitempty"`
	// Align, if positive, overrides the member's alignment.
	Align int `yaml:"align,omitempty"`
}

// CallbackDecl declares a function prototype.
type CallbackDecl struct {
	// Result is the return type spec. Empty means void.
	Result string `yaml:"result,omitempty"`
	// Params are the parameter type specs. A spec may be prefixed
	// with "out " or "inout " to declare an output parameter.
	Params []string `yaml:"params,omitempty"`
}

var hints = map[string]ctype.ArrayHint{
	"":       ctype.HintAuto,
	"auto":   ctype.HintAuto,
	"array":  ctype.HintArray,
	"typed":  ctype.HintTypedArray,
	"string": ctype.HintString,
}

// Load reads and parses the type library at path.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading type library %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses type library content. The path argument is used only
// for error messages.
func Parse(data []byte, path string) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := lib.validate(path); err != nil {
		return nil, err
	}
	return &lib, nil
}

// validate checks declarations for structural errors. Type specs are
// checked when the library is registered.
func (l *Library) validate(path string) error {
	for i, d := range l.Types {
		if d.Name == "" {
			return fmt.Errorf("%s: types[%d]: name is required", path, i)
		}
		kinds := 0
		if d.Opaque {
			kinds++
		}
		if d.Alias != "" {
			kinds++
		}
		if len(d.Fields) > 0 {
			kinds++
		}
		if d.Callback != nil {
			kinds++
		}
		if kinds != 1 {
			return fmt.Errorf("%s: types[%d] (%s): exactly one of opaque, alias, fields or callback is required", path, i, d.Name)
		}
		if d.Packed && len(d.Fields) == 0 {
			return fmt.Errorf("%s: types[%d] (%s): packed is only valid with fields", path, i, d.Name)
		}
		for j, f := range d.Fields {
			if f.Name == "" || f.Type == "" {
				return fmt.Errorf("%s: types[%d].fields[%d] (%s): name and type are required", path, i, j, d.Name)
			}
			if _, ok := hints[f.Hint]; !ok {
				return fmt.Errorf("%s: types[%d].fields[%d] (%s): unknown hint %q", path, i, j, d.Name, f.Hint)
			}
			if f.Hint != "" && f.Len <= 0 {
				return fmt.Errorf("%s: types[%d].fields[%d] (%s): hint is only valid with len", path, i, j, d.Name)
			}
		}
	}
	return nil
}

// Register declares the library's types in r, in order, and returns
// them. Registration stops at the first error, leaving the types
// declared so far in r.
func (l *Library) Register(r *ctype.Registry) ([]*ctype.Type, error) {
	var ret []*ctype.Type
	for i, d := range l.Types {
		t, err := register(r, d)
		if err != nil {
			return ret, fmt.Errorf("types[%d] (%s): %w", i, d.Name, err)
		}
		ret = append(ret, t)
	}
	return ret, nil
}

func register(r *ctype.Registry, d Decl) (*ctype.Type, error) {
	switch {
	case d.Opaque:
		return r.DefineOpaque(d.Name)
	case d.Alias != "":
		return r.DefineAlias(d.Name, d.Alias)
	case d.Callback != nil:
		result := d.Callback.Result
		if result == "" {
			result = "void"
		}
		var params []any
		for _, p := range d.Callback.Params {
			ref, err := param(r, p)
			if err != nil {
				return nil, err
			}
			params = append(params, ref)
		}
		return r.DefineCallback(d.Name, result, params...)
	default:
		var fields []ctype.MemberDecl
		for _, f := range d.Fields {
			fields = append(fields, ctype.MemberDecl{
				Name:  f.Name,
				Type:  f.Type,
				Len:   f.Len,
				Hint:  hints[f.Hint],
				Align: f.Align,
			})
		}
		return r.DefineStruct(d.Name, fields, ctype.StructOptions{Packed: d.Packed})
	}
}

// errBadDirection is returned for a parameter with a direction
// prefix and nothing else.
var errBadDirection = errors.New("missing type after direction")

func param(r *ctype.Registry, spec string) (ctype.TypeRef, error) {
	dir, rest, ok := strings.Cut(strings.TrimSpace(spec), " ")
	switch {
	case ok && dir == "out":
		return r.Out(rest)
	case ok && dir == "inout":
		return r.InOut(rest)
	case spec == "out" || spec == "inout":
		return ctype.TypeRef{}, fmt.Errorf("parameter %q: %w", spec, errBadDirection)
	}
	return r.Resolve(spec)
}
