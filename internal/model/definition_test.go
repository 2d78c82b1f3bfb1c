package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbmodel/internal/errors"
)

type pair struct {
	Base
	A int `json:"a"`
	B int `json:"b"`
}

type pairParams struct {
	A int `json:"a"`
	B int `json:"b"`
}

func (p *pair) DataFields() []Field {
	return []Field{Value("a", &p.A), Value("b", &p.B)}
}

var pairs = &Definition[*pair, pairParams]{
	Type:         "pair",
	Create:       func(p pairParams, _ bool) *pair { return &pair{A: p.A, B: p.B} },
	PartitionKey: KeyAttribute{Attribute: "a", PathParameter: "a"},
}

func TestFromJSONString_DropsUnknownKeys(t *testing.T) {
	p, err := pairs.FromJSONString([]byte(`{"a":1,"b":2,"c":3}`))
	require.NoError(t, err)

	assert.Equal(t, Entry{"a": 1, "b": 2}, EntryOf(p))
}

func TestFromJSONString_MalformedInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"truncated", `{"name":`},
		{"not json", `widget`},
		{"wrong shape", `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := widgets.FromJSONString([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrMalformedInput))

			var malformed *errors.MalformedInputError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, "widget", malformed.Type)
		})
	}
}

func TestFromJSONString_SyntaxErrorReachable(t *testing.T) {
	_, err := widgets.FromJSONString([]byte(`{"name":`))

	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestFromJSONString_Defaults(t *testing.T) {
	w, err := widgets.FromJSONString([]byte(`{"name":"a"}`))
	require.NoError(t, err)
	require.NotNil(t, w.Color)
	assert.Equal(t, "grey", *w.Color)

	w, err = widgets.FromJSONString([]byte(`{"name":"a"}`), WithDefaults(false))
	require.NoError(t, err)
	assert.Nil(t, w.Color)
}

func TestFromJSONString_AdditionalProperties(t *testing.T) {
	w, err := widgets.FromJSONString(
		[]byte(`{"name":"a","color":"red"}`),
		WithAdditionalProperties(map[string]any{"color": "blue", "size": 3}),
	)
	require.NoError(t, err)

	assert.Equal(t, "a", w.Name)
	assert.Equal(t, "blue", *w.Color)
	assert.Equal(t, []string{"color", "name"}, EntryOf(w).Names())
}

func TestFromJSONString_CarriesBaseFields(t *testing.T) {
	w, err := widgets.FromJSONString(
		[]byte(`{"name":"a","resourceId":"id-1","created":10,"updated":20}`),
		WithDefaults(false),
	)
	require.NoError(t, err)

	assert.Equal(t, Entry{
		"name":          "a",
		FieldResourceID: "id-1",
		FieldCreated:    int64(10),
		FieldUpdated:    int64(20),
	}, EntryOf(w))
}

func TestFromJSON_NoDefaultsByDefault(t *testing.T) {
	w := widgets.FromJSON(widgetParams{Name: "a"})
	assert.Nil(t, w.Color)

	w = widgets.FromJSON(widgetParams{Name: "a"}, WithDefaults(true))
	require.NotNil(t, w.Color)
}

func TestFromJSON_CopiesBaseFields(t *testing.T) {
	params := widgetParams{Name: "a", Base: Base{ResourceID: ptr("id-1")}}
	w := widgets.FromJSON(params)

	require.NotNil(t, w.ResourceID)
	assert.Equal(t, "id-1", *w.ResourceID)
	*params.ResourceID = "changed"
	assert.Equal(t, "id-1", *w.ResourceID)
}

func TestFromJSONArrayString_PreservesOrder(t *testing.T) {
	ws, err := widgets.FromJSONArrayString(
		[]byte(`[{"name":"a"},{"name":"b","color":"red"},{"name":"c"}]`),
		WithAdditionalProperties(map[string]any{"size": 1}),
	)
	require.NoError(t, err)
	require.Len(t, ws, 3)

	assert.Equal(t, "a", ws[0].Name)
	assert.Equal(t, "b", ws[1].Name)
	assert.Equal(t, "c", ws[2].Name)

	assert.Equal(t, "grey", *ws[0].Color)
	assert.Equal(t, "red", *ws[1].Color)
	assert.NotSame(t, ws[0].Color, ws[2].Color, "defaults are applied per element")
}

func TestFromJSONArrayString_Malformed(t *testing.T) {
	_, err := widgets.FromJSONArrayString([]byte(`{"name":"a"}`))
	assert.True(t, errors.Is(err, errors.ErrMalformedInput))

	_, err = widgets.FromJSONArrayString([]byte(`[{"name":"a"},{"name":1}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 1")
	assert.True(t, errors.Is(err, errors.ErrMalformedInput))
}

func TestFromJSONArray(t *testing.T) {
	ws := widgets.FromJSONArray([]widgetParams{{Name: "a"}, {Name: "b"}})
	require.Len(t, ws, 2)
	assert.Equal(t, "a", ws[0].Name)
	assert.Nil(t, ws[0].Color)
	assert.Equal(t, "b", ws[1].Name)
}

func TestDefinition_Protected(t *testing.T) {
	d := &Definition[*widget, widgetParams]{
		Type:   "protected-widget",
		Create: widgets.Create,
		ProtectedFields: map[Role][]string{
			RoleAdminUser:      {"color", "name"},
			RoleRegisteredUser: {"color"},
		},
	}

	tests := []struct {
		name  string
		roles []Role
		want  []string
	}{
		{"no roles", nil, []string{"color", "name"}},
		{"admin", []Role{RoleAdminUser}, []string{"color"}},
		{"registered", []Role{RoleRegisteredUser}, []string{"color", "name"}},
		{"both", []Role{RoleAdminUser, RoleRegisteredUser}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, d.Protected(tt.roles...))
		})
	}
}

func TestDefinition_KeyOf(t *testing.T) {
	key, err := widgets.KeyOf(&widget{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, Key{Type: "widget", Partition: "a"}, key)
	assert.Equal(t, "widget#a", key.String())

	_, err = widgets.KeyOf(&widget{})
	assert.True(t, errors.Is(err, errors.ErrMissingKey))
}

func TestDefinition_FieldNames(t *testing.T) {
	assert.Equal(t, []string{"name", "color"}, widgets.FieldNames())
	assert.Equal(t, []string{"name", "color", FieldResourceID, FieldCreated, FieldUpdated}, FieldNames(widgets.New()))
}

func TestDefinition_MissingFactoryPanics(t *testing.T) {
	d := &Definition[*widget, widgetParams]{Type: "broken"}
	assert.Panics(t, func() { d.FromJSON(widgetParams{}) })
}
