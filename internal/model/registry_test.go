package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbmodel/internal/errors"
)

func unregister(typ string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, typ)
}

func TestRegister(t *testing.T) {
	d := &Definition[*widget, widgetParams]{
		Type:         "registry-widget",
		Create:       widgets.Create,
		PartitionKey: widgets.PartitionKey,
	}
	t.Cleanup(func() { unregister(d.Type) })

	assert.Same(t, d, Register(d))
	assert.Contains(t, Types(), "registry-widget")

	h, err := Lookup("registry-widget")
	require.NoError(t, err)

	m, err := h.Hydrate([]byte(`{"name":"x","extra":true}`))
	require.NoError(t, err)
	w, ok := m.(*widget)
	require.True(t, ok)
	assert.Equal(t, "x", w.Name)
	assert.Equal(t, "grey", *w.Color)

	assert.Panics(t, func() { Register(d) }, "duplicate tag")
}

func TestRegister_Incomplete(t *testing.T) {
	tests := []struct {
		name string
		def  *Definition[*widget, widgetParams]
	}{
		{"no type", &Definition[*widget, widgetParams]{Create: widgets.Create, PartitionKey: widgets.PartitionKey}},
		{"no factory", &Definition[*widget, widgetParams]{Type: "no-factory", PartitionKey: widgets.PartitionKey}},
		{"no partition key", &Definition[*widget, widgetParams]{Type: "no-key", Create: widgets.Create}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { Register(tt.def) })
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("nope")
	assert.True(t, errors.Is(err, errors.ErrUnknownType))
}

func TestHydrateArray(t *testing.T) {
	h, err := Lookup(AuthenticationUserType)
	require.NoError(t, err)

	models, err := h.HydrateArray([]byte(`[{"sub":"s1","email":"a@x.io"},{"sub":"s2","email":"b@x.io"}]`))
	require.NoError(t, err)
	require.Len(t, models, 2)

	key, err := h.KeyOf(models[1])
	require.NoError(t, err)
	assert.Equal(t, Key{Type: AuthenticationUserType, Partition: "b@x.io"}, key)
	assert.Equal(t, map[string]string{FieldSub: "s2"}, h.IndexesOf(models[1]))
}
