package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"

	"dbmodel/internal/errors"
)

// KeyAttribute binds a storage key attribute to the request path parameter
// that carries its value.
type KeyAttribute struct {
	Attribute     string
	PathParameter string
}

// Key addresses one stored document.
type Key struct {
	Type      string
	Partition string
	Sort      string
}

func (k Key) String() string {
	if k.Sort == "" {
		return k.Type + "#" + k.Partition
	}
	return k.Type + "#" + k.Partition + "#" + k.Sort
}

type hydrateOptions struct {
	withDefaults *bool
	additional   map[string]any
}

// HydrateOption configures the FromJSON family.
type HydrateOption func(*hydrateOptions)

// WithDefaults overrides whether the record factory fills in default values.
func WithDefaults(v bool) HydrateOption {
	return func(o *hydrateOptions) { o.withDefaults = &v }
}

// WithAdditionalProperties merges props over every parsed document before it
// is decoded. Only the string variants honour it.
func WithAdditionalProperties(props map[string]any) HydrateOption {
	return func(o *hydrateOptions) { o.additional = props }
}

func buildHydrateOptions(defaults bool, opts []HydrateOption) hydrateOptions {
	o := hydrateOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.withDefaults == nil {
		o.withDefaults = &defaults
	}
	return o
}

// Definition describes a concrete record type: its type tag, the factory
// building an instance from decoded params P, its storage keys and the fields
// hidden from callers lacking a role.
//
// P is the JSON shape of the record. When P embeds Base, the base fields of
// the document are carried over to the built instance.
type Definition[T Model, P any] struct {
	Type   string
	Create func(params P, withDefaults bool) T

	PartitionKey  KeyAttribute
	SortKey       *KeyAttribute
	SecondaryKeys []KeyAttribute

	// ProtectedFields maps a role to the fields only holders of that role may see.
	ProtectedFields map[Role][]string
}

// TypeName returns the registry tag.
func (d *Definition[T, P]) TypeName() string { return d.Type }

func (d *Definition[T, P]) validate() error {
	if d.Type == "" {
		return fmt.Errorf("record definition without a type tag")
	}
	if d.Create == nil {
		return fmt.Errorf("record type %s has no factory", d.Type)
	}
	if d.PartitionKey.Attribute == "" {
		return fmt.Errorf("record type %s has no partition key", d.Type)
	}
	return nil
}

func (d *Definition[T, P]) build(params P, withDefaults bool) T {
	if d.Create == nil {
		panic(fmt.Sprintf("model: record type %q has no factory", d.Type))
	}
	m := d.Create(params, withDefaults)
	if src, ok := any(&params).(interface{ record() *Base }); ok {
		copyBase(m.record(), src.record())
	}
	return m
}

func copyBase(dst, src *Base) {
	if src.ResourceID != nil {
		v := *src.ResourceID
		dst.ResourceID = &v
	}
	if src.Created != nil {
		v := *src.Created
		dst.Created = &v
	}
	if src.Updated != nil {
		v := *src.Updated
		dst.Updated = &v
	}
}

// New returns an empty instance.
func (d *Definition[T, P]) New() T {
	var params P
	return d.build(params, false)
}

// FieldNames returns the record's own field names, base fields excluded.
func (d *Definition[T, P]) FieldNames() []string {
	fields := d.New().DataFields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// FromJSON builds an instance from an already decoded document. The data is
// assumed to describe an existing record: defaults are off unless requested.
func (d *Definition[T, P]) FromJSON(params P, opts ...HydrateOption) T {
	o := buildHydrateOptions(false, opts)
	return d.build(params, *o.withDefaults)
}

// FromJSONArray is FromJSON over a slice, preserving order.
func (d *Definition[T, P]) FromJSONArray(params []P, opts ...HydrateOption) []T {
	o := buildHydrateOptions(false, opts)
	out := make([]T, len(params))
	for i, p := range params {
		out[i] = d.build(p, *o.withDefaults)
	}
	return out
}

// FromJSONString decodes an untrusted document. Defaults are on unless
// disabled; additional properties override the parsed ones. Unknown keys are
// dropped. Decoding failures are returned as malformed input.
func (d *Definition[T, P]) FromJSONString(data []byte, opts ...HydrateOption) (T, error) {
	o := buildHydrateOptions(true, opts)
	return d.decode(data, o)
}

// FromJSONArrayString decodes an untrusted array of documents, preserving
// order and length.
func (d *Definition[T, P]) FromJSONArrayString(data []byte, opts ...HydrateOption) ([]T, error) {
	o := buildHydrateOptions(true, opts)
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Malformed(d.Type, err)
	}
	out := make([]T, len(items))
	for i, item := range items {
		m, err := d.decode(item, o)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = m
	}
	return out, nil
}

func (d *Definition[T, P]) decode(data []byte, o hydrateOptions) (T, error) {
	var zero T
	merged, err := mergeProperties(data, o.additional)
	if err != nil {
		return zero, errors.Malformed(d.Type, err)
	}
	var params P
	if err := json.Unmarshal(merged, &params); err != nil {
		return zero, errors.Malformed(d.Type, err)
	}
	return d.build(params, *o.withDefaults), nil
}

func mergeProperties(data []byte, extra map[string]any) ([]byte, error) {
	if len(extra) == 0 {
		return data, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = make(map[string]json.RawMessage, len(extra))
	}
	for k, v := range extra {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("additional property %s: %w", k, err)
		}
		doc[k] = raw
	}
	return json.Marshal(doc)
}

// Hydrate is FromJSONString returning the instance as a Model.
func (d *Definition[T, P]) Hydrate(data []byte, opts ...HydrateOption) (Model, error) {
	m, err := d.FromJSONString(data, opts...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// HydrateArray is FromJSONArrayString returning Models.
func (d *Definition[T, P]) HydrateArray(data []byte, opts ...HydrateOption) ([]Model, error) {
	items, err := d.FromJSONArrayString(data, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]Model, len(items))
	for i, m := range items {
		out[i] = m
	}
	return out, nil
}

// Protected returns the union of the fields declared for every role the
// caller does not hold. With no roles every declared field is returned.
func (d *Definition[T, P]) Protected(roles ...Role) []string {
	declared := make([]Role, 0, len(d.ProtectedFields))
	for role := range d.ProtectedFields {
		declared = append(declared, role)
	}
	sort.Slice(declared, func(i, j int) bool { return declared[i] < declared[j] })

	var fields []string
	for _, role := range declared {
		if slices.Contains(roles, role) {
			continue
		}
		for _, f := range d.ProtectedFields[role] {
			if !slices.Contains(fields, f) {
				fields = append(fields, f)
			}
		}
	}
	return fields
}

// KeyOf resolves the storage key of m.
func (d *Definition[T, P]) KeyOf(m Model) (Key, error) {
	entry := EntryOf(m)
	partition, err := keyValue(entry, d.PartitionKey.Attribute)
	if err != nil {
		return Key{}, err
	}
	key := Key{Type: d.Type, Partition: partition}
	if d.SortKey != nil {
		if key.Sort, err = keyValue(entry, d.SortKey.Attribute); err != nil {
			return Key{}, err
		}
	}
	return key, nil
}

// IndexesOf returns the secondary key values present on m, keyed by attribute.
func (d *Definition[T, P]) IndexesOf(m Model) map[string]string {
	entry := EntryOf(m)
	indexes := make(map[string]string, len(d.SecondaryKeys))
	for _, k := range d.SecondaryKeys {
		if v, err := keyValue(entry, k.Attribute); err == nil {
			indexes[k.Attribute] = v
		}
	}
	return indexes
}

func keyValue(entry Entry, attribute string) (string, error) {
	v, ok := entry[attribute]
	if !ok {
		return "", fmt.Errorf("%w: %s", errors.ErrMissingKey, attribute)
	}
	s := fmt.Sprint(v)
	if s == "" {
		return "", fmt.Errorf("%w: %s", errors.ErrMissingKey, attribute)
	}
	return s, nil
}
