package view

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbmodel/internal/model"
)

var recordFields = []string{"name", "color", "owner", "size"}

func TestPolicy_Fields(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		fields []string
		want   []string
	}{
		{"everything", Policy{}, recordFields, recordFields},
		{"base fields never", Policy{}, append([]string{model.FieldResourceID, model.FieldCreated, model.FieldUpdated}, "name"), []string{"name"}},
		{"base fields even when allowed", Policy{Allow: []string{model.FieldResourceID, "name"}}, append(recordFields, model.FieldResourceID), []string{"name"}},
		{"allow", Policy{Allow: []string{"name", "size"}}, recordFields, []string{"name", "size"}},
		{"empty allow", Policy{Allow: []string{}}, recordFields, nil},
		{"deny over allow", Policy{Allow: []string{"name", "size"}, Deny: []string{"size"}}, recordFields, []string{"name"}},
		{"path parameters", Policy{PathParameters: []string{"owner"}}, recordFields, []string{"name", "color", "size"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Fields(tt.fields))
		})
	}
}

type goodCreate struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type leakyCreate struct {
	model.Base
	Name string `json:"name"`
}

type extraCreate struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

type goodPatch struct {
	Name  *string  `json:"name,omitempty"`
	Tags  []string `json:"color,omitempty"`
	Inner string   `json:"-"`
}

type requiredPatch struct {
	Name string `json:"name"`
}

func TestCheck(t *testing.T) {
	allowed := Policy{PathParameters: []string{"owner"}}.Fields(recordFields)

	assert.NoError(t, Check(Create, goodCreate{}, allowed))
	assert.NoError(t, Check(Replace, &goodCreate{}, allowed))
	assert.NoError(t, Check(Patch, goodPatch{}, allowed))

	err := Check(Create, leakyCreate{}, append(allowed, model.FieldResourceID))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"resourceId"`)

	err = Check(Create, extraCreate{}, allowed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"owner"`)

	err = Check(Patch, requiredPatch{}, allowed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be optional")

	assert.Error(t, Check(Create, 42, allowed))
}

func TestSupplied(t *testing.T) {
	name := "a"
	assert.Equal(t, []string{"name"}, Supplied(goodPatch{Name: &name}))
	assert.Equal(t, []string{"name", "color"}, Supplied(&goodPatch{Name: &name, Tags: []string{}}))
	assert.Equal(t, []string{}, Supplied(goodPatch{}))
	assert.Equal(t, []string{}, Supplied((*goodPatch)(nil)))
}

func TestAuthenticationUserViews(t *testing.T) {
	require.NoError(t, AuthenticationUserViews.Validate())

	for _, v := range []any{AuthenticationUserCreate{}, AuthenticationUserReplace{}, AuthenticationUserPatch{}} {
		for _, f := range jsonFields(reflect.TypeOf(v)) {
			assert.False(t, model.IsBaseField(f.name), "%T exposes %s", v, f.name)
		}
	}

	assert.Equal(t, []string{model.FieldSub, model.FieldEmail}, AuthenticationUserViews.Create.Fields(AuthenticationUserViews.Fields))
	assert.Equal(t, []string{model.FieldSub, model.FieldPermissions}, AuthenticationUserViews.Replace.Fields(AuthenticationUserViews.Fields))
}

func TestSet_ValidateRejectsLeak(t *testing.T) {
	s := AuthenticationUserViews
	s.CreateView = leakyCreate{}
	assert.Error(t, s.Validate())
	assert.Panics(t, func() { s.MustValidate() })

	s = AuthenticationUserViews
	s.PatchView = nil
	assert.Error(t, s.Validate())
}

func TestAuthenticationUserPatch_Params(t *testing.T) {
	sub := "auth0|2"
	v := AuthenticationUserPatch{Sub: &sub}

	p := v.Params("a@x.io")
	assert.Equal(t, "auth0|2", p.Sub)
	assert.Equal(t, "a@x.io", p.Email)
	assert.Nil(t, p.Permissions)
	assert.Equal(t, []string{model.FieldSub}, Supplied(v))
}
