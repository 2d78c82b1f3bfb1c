// Package model defines the record contract shared by every document this
// service stores: the base fields, hydration from JSON and the create/update
// snapshots handed to a storage backend.
package model

// Base field names. They are owned by the record contract and never appear
// in a request view.
const (
	FieldResourceID = "resourceId"
	FieldCreated    = "created"
	FieldUpdated    = "updated"
)

// BaseFieldNames lists the fields contributed by Base, in storage order.
var BaseFieldNames = []string{FieldResourceID, FieldCreated, FieldUpdated}

// Base carries the identifier and timestamps every stored record has.
// Embed it in a concrete record type; on its own it is not a Model.
type Base struct {
	ResourceID *string `json:"resourceId,omitempty"`
	Created    *int64  `json:"created,omitempty"`
	Updated    *int64  `json:"updated,omitempty"`
}

func (b *Base) record() *Base { return b }

func (b *Base) fields() []Field {
	return []Field{
		Optional(FieldResourceID, &b.ResourceID),
		Optional(FieldCreated, &b.Created),
		Optional(FieldUpdated, &b.Updated),
	}
}

// Model is implemented by concrete record types. The unexported method is
// promoted from Base, so only types embedding Base qualify.
type Model interface {
	record() *Base

	// DataFields returns the record's own fields, excluding the Base ones.
	DataFields() []Field
}

// Field is a named accessor for one field of a record instance.
type Field struct {
	Name  string
	value func() (any, bool)
	clear func()
}

// Value returns the field value and whether it is present.
func (f Field) Value() (any, bool) { return f.value() }

// Present reports whether the field currently holds a value.
func (f Field) Present() bool {
	_, ok := f.value()
	return ok
}

// Clear removes the field from the instance.
func (f Field) Clear() { f.clear() }

// Value declares a field that is always present. Clearing it resets it to
// the zero value.
func Value[T any](name string, p *T) Field {
	return Field{
		Name:  name,
		value: func() (any, bool) { return *p, true },
		clear: func() {
			var zero T
			*p = zero
		},
	}
}

// Optional declares a pointer field; a nil pointer means the field is absent,
// a non-nil pointer to a zero value is still present.
func Optional[T any](name string, p **T) Field {
	return Field{
		Name: name,
		value: func() (any, bool) {
			if *p == nil {
				return nil, false
			}
			return **p, true
		},
		clear: func() { *p = nil },
	}
}

// Slice declares a slice field; a nil slice is absent, an empty one is not.
func Slice[E any](name string, p *[]E) Field {
	return Field{
		Name: name,
		value: func() (any, bool) {
			if *p == nil {
				return nil, false
			}
			return *p, true
		},
		clear: func() { *p = nil },
	}
}

// Fields returns every field of m: its own fields followed by the Base ones.
func Fields(m Model) []Field {
	own := m.DataFields()
	fields := make([]Field, 0, len(own)+len(BaseFieldNames))
	fields = append(fields, own...)
	return append(fields, m.record().fields()...)
}

// FieldNames returns the names of Fields(m) in order.
func FieldNames(m Model) []string {
	fields := Fields(m)
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// EntryOf returns the present fields of m as an Entry.
func EntryOf(m Model) Entry {
	entry := Entry{}
	for _, f := range Fields(m) {
		if v, ok := f.Value(); ok {
			entry[f.Name] = v
		}
	}
	return entry
}

// IsBaseField reports whether name belongs to the record contract.
func IsBaseField(name string) bool {
	for _, n := range BaseFieldNames {
		if n == name {
			return true
		}
	}
	return false
}
