package model

import (
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
)

// now is replaced in tests.
var now = time.Now

func nowMillis() int64 { return now().UnixMilli() }

func newResourceID() string { return uuid.New().String() }

// Entry is the field map handed to a storage backend as a create or a
// partial update payload.
type Entry map[string]any

// Names returns the entry's field names, sorted.
func (e Entry) Names() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the entry carries name.
func (e Entry) Has(name string) bool {
	_, ok := e[name]
	return ok
}

// Without returns a copy of the entry with the given fields removed.
func (e Entry) Without(names ...string) Entry {
	out := make(Entry, len(e))
	for k, v := range e {
		out[k] = v
	}
	for _, name := range names {
		delete(out, name)
	}
	return out
}

// CreateOptions controls CreateEntry. The zero value stamps resourceId and
// created but not updated.
type CreateOptions struct {
	SkipResourceID bool
	SkipCreated    bool
	StampUpdated   bool
}

// UpdateOptions controls UpdateEntry. The zero value stamps updated, has an
// empty blacklist and no whitelist. A non-nil WhiteList, even an empty one,
// restricts the payload.
type UpdateOptions struct {
	SkipUpdated bool
	BlackList   []string
	WhiteList   []string
}

// CreateEntry prepares m for its first write: every enabled stamp is applied
// when the field is not already present. It returns m itself.
func CreateEntry[T Model](m T, opts CreateOptions) T {
	b := m.record()
	if !opts.SkipResourceID && b.ResourceID == nil {
		id := newResourceID()
		b.ResourceID = &id
	}
	if !opts.SkipCreated && b.Created == nil {
		ts := nowMillis()
		b.Created = &ts
	}
	if opts.StampUpdated && b.Updated == nil {
		ts := nowMillis()
		b.Updated = &ts
	}
	return m
}

// UpdateEntry prepares m for a partial update. resourceId and created are
// always dropped, updated is stamped unless skipped, and the remaining fields
// are filtered by the black and white lists. Fields that do not survive are
// cleared on m; the survivors are returned.
func UpdateEntry[T Model](m T, opts UpdateOptions) Entry {
	black := make([]string, 0, len(opts.BlackList)+2)
	black = append(black, opts.BlackList...)
	black = append(black, FieldCreated, FieldResourceID)

	var white []string
	if opts.WhiteList != nil {
		white = make([]string, 0, len(opts.WhiteList)+1)
		white = append(white, opts.WhiteList...)
		if !opts.SkipUpdated {
			white = append(white, FieldUpdated)
		}
	}

	b := m.record()
	if !opts.SkipUpdated && b.Updated == nil {
		ts := nowMillis()
		b.Updated = &ts
	}

	entry := Entry{}
	for _, f := range Fields(m) {
		v, ok := f.Value()
		if !ok || (white != nil && !slices.Contains(white, f.Name)) || slices.Contains(black, f.Name) {
			f.Clear()
			continue
		}
		entry[f.Name] = v
	}
	return entry
}
