package model

import (
	"fmt"
	"sort"
	"sync"

	"dbmodel/internal/errors"
)

// Hydrator is the type-erased view of a Definition used by code that picks
// the record type at runtime.
type Hydrator interface {
	TypeName() string
	Hydrate(data []byte, opts ...HydrateOption) (Model, error)
	HydrateArray(data []byte, opts ...HydrateOption) ([]Model, error)
	KeyOf(m Model) (Key, error)
	IndexesOf(m Model) map[string]string
	Protected(roles ...Role) []string

	validate() error
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Hydrator{}
)

// Register adds h to the registry and returns it. It panics when h is
// incomplete or its type tag is already taken.
func Register[H Hydrator](h H) H {
	if err := h.validate(); err != nil {
		panic("model: " + err.Error())
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[h.TypeName()]; dup {
		panic(fmt.Sprintf("model: record type %q registered twice", h.TypeName()))
	}
	registry[h.TypeName()] = h
	return h
}

// Lookup returns the Hydrator registered under typ.
func Lookup(typ string) (Hydrator, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	h, ok := registry[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownType, typ)
	}
	return h, nil
}

// Types returns the registered type tags, sorted.
func Types() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
