// Package store persists record documents. A document is the JSON body of a
// record, addressed by its model.Key, with optional secondary index values.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"dbmodel/internal/model"
)

// Document is a record body ready for storage.
type Document struct {
	Key     model.Key
	Indexes map[string]string
	Body    json.RawMessage
}

// Store defines document persistence operations.
type Store interface {
	// Create stores a new document. It fails with ErrRecordExists when the key
	// or one of the index values is taken.
	Create(ctx context.Context, doc Document) error
	// Merge writes changes over the stored body field by field and moves the
	// given index values. It returns the merged body.
	Merge(ctx context.Context, key model.Key, changes model.Entry, indexes map[string]string) (json.RawMessage, error)
	Get(ctx context.Context, key model.Key) (json.RawMessage, error)
	Delete(ctx context.Context, key model.Key) error
	// List returns every document of a record type, ordered by key.
	List(ctx context.Context, typ string) ([]json.RawMessage, error)
	// Lookup finds a document through a secondary index.
	Lookup(ctx context.Context, typ, attribute, value string) (json.RawMessage, error)
	Close() error
}

// NewDocument builds the document of m from its definition.
func NewDocument(h model.Hydrator, m model.Model) (Document, error) {
	key, err := h.KeyOf(m)
	if err != nil {
		return Document{}, err
	}
	body, err := json.Marshal(model.EntryOf(m))
	if err != nil {
		return Document{}, fmt.Errorf("encode %s: %w", key, err)
	}
	return Document{Key: key, Indexes: h.IndexesOf(m), Body: body}, nil
}

func merge(body json.RawMessage, changes model.Entry) (json.RawMessage, error) {
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode stored body: %w", err)
	}
	for name, v := range changes {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		doc[name] = raw
	}
	return json.Marshal(doc)
}
