// Package view derives the request body shapes accepted for a record type:
// create (POST), replace (PUT) and partial update (PATCH).
//
// Go has no structural type subtraction, so each view is a hand-written
// struct. A Policy states which record fields a view may carry and Check
// verifies a struct against it. Base record fields are never allowed.
package view

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"dbmodel/internal/model"
)

// Kind names a view.
type Kind int

const (
	Create Kind = iota
	Replace
	Patch
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "create"
	case Replace:
		return "replace"
	case Patch:
		return "patch"
	default:
		return "unknown"
	}
}

// Policy restricts the record fields a view may carry.
type Policy struct {
	// Allow restricts the view to these fields. Nil allows every field.
	Allow []string
	// Deny removes fields, applied after Allow.
	Deny []string
	// PathParameters lists the fields whose value arrives in the request path.
	PathParameters []string
}

// Fields applies p to the record's own field names.
func (p Policy) Fields(recordFields []string) []string {
	var out []string
	for _, f := range recordFields {
		switch {
		case model.IsBaseField(f):
		case p.Allow != nil && !slices.Contains(p.Allow, f):
		case slices.Contains(p.Deny, f):
		case slices.Contains(p.PathParameters, f):
		default:
			out = append(out, f)
		}
	}
	return out
}

// PathFields returns the attributes of keys, for Policy.PathParameters.
func PathFields(keys ...model.KeyAttribute) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.Attribute
	}
	return out
}

// Check verifies that the struct v only carries allowed fields, and for
// Patch views that every field is optional.
func Check(kind Kind, v any, allowed []string) error {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("%s view: %T is not a struct", kind, v)
	}
	for _, f := range jsonFields(t) {
		if model.IsBaseField(f.name) {
			return fmt.Errorf("%s view %s: exposes record field %q", kind, t.Name(), f.name)
		}
		if !slices.Contains(allowed, f.name) {
			return fmt.Errorf("%s view %s: field %q is not allowed", kind, t.Name(), f.name)
		}
		if kind == Patch && !optional(f.typ) {
			return fmt.Errorf("%s view %s: field %q must be optional", kind, t.Name(), f.name)
		}
	}
	return nil
}

// Supplied returns the json names of the non-nil optional fields of v, in
// declaration order. It is the whitelist of a patch request.
func Supplied(v any) []string {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return []string{}
		}
		rv = rv.Elem()
	}
	out := []string{}
	for _, f := range jsonFields(rv.Type()) {
		fv := rv.FieldByIndex(f.index)
		if optional(f.typ) && fv.IsNil() {
			continue
		}
		out = append(out, f.name)
	}
	return out
}

type jsonField struct {
	name  string
	typ   reflect.Type
	index []int
}

func jsonFields(t reflect.Type) []jsonField {
	var out []jsonField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if sf.Anonymous && name == "" {
			et := sf.Type
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				for _, inner := range jsonFields(et) {
					inner.index = append([]int{i}, inner.index...)
					out = append(out, inner)
				}
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		out = append(out, jsonField{name: name, typ: sf.Type, index: []int{i}})
	}
	return out
}

func optional(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	default:
		return false
	}
}
