package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"dbmodel/internal/errors"
)

func TestNewAuthenticationUser_Permissions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		u := NewAuthenticationUser(AuthenticationUserParams{Sub: "s", Email: "a@x.io"}, true)
		assert.Equal(t, DefaultPermissions(), u.Permissions)
		assert.Equal(t, []Role{RoleWebsiteUser, RoleRegisteredUser}, u.Roles())
	})

	t.Run("no defaults", func(t *testing.T) {
		u := NewAuthenticationUser(AuthenticationUserParams{Sub: "s", Email: "a@x.io"}, false)
		assert.NotNil(t, u.Permissions)
		assert.Empty(t, u.Permissions)
	})

	t.Run("explicit", func(t *testing.T) {
		perms := []Permission{NewPermission(ResourceCompany, "acme", RoleCompanyOwner)}
		u := NewAuthenticationUser(AuthenticationUserParams{Permissions: perms}, true)
		require.Len(t, u.Permissions, 1)

		perms[0].Roles[0] = RoleAdminUser
		assert.Equal(t, RoleCompanyOwner, u.Permissions[0].Roles[0], "permissions are copied")
	})
}

func TestDefaultPermissions_NotShared(t *testing.T) {
	a := DefaultPermissions()
	a[0].Roles[0] = RoleAdminUser

	assert.Equal(t, RoleWebsiteUser, DefaultPermissions()[0].Roles[0])
}

func TestAuthenticationUsers_FromJSONString(t *testing.T) {
	u, err := AuthenticationUsers.FromJSONString([]byte(`{
		"sub": "auth0|1",
		"email": "a@x.io",
		"resourceId": "id-1",
		"permissions": [{"resourceType": "COMPANY", "resourceId": "acme", "roles": ["COMPANY_USER"]}],
		"password": "dropped"
	}`))
	require.NoError(t, err)

	assert.Equal(t, "auth0|1", u.Sub)
	assert.Equal(t, "id-1", *u.ResourceID)
	assert.Equal(t, []Permission{NewPermission(ResourceCompany, "acme", RoleCompanyUser)}, u.Permissions)
	assert.Equal(t, []string{FieldEmail, FieldPermissions, FieldResourceID, FieldSub}, EntryOf(u).Names())
}

func TestAuthenticationUsers_RejectsUnknownRole(t *testing.T) {
	_, err := AuthenticationUsers.FromJSONString([]byte(`{"permissions":[{"resourceType":"GLOBAL","resourceId":"*","roles":["ROOT"]}]}`))
	assert.True(t, errors.Is(err, errors.ErrMalformedInput))

	_, err = AuthenticationUsers.FromJSONString([]byte(`{"permissions":[{"resourceType":"PLANET","resourceId":"*","roles":[]}]}`))
	assert.True(t, errors.Is(err, errors.ErrMalformedInput))
}

func TestAuthenticationUsers_Protected(t *testing.T) {
	assert.ElementsMatch(t, []string{FieldPermissions, FieldSub}, AuthenticationUsers.Protected())
	assert.Equal(t, []string{FieldPermissions}, AuthenticationUsers.Protected(RoleRegisteredUser))
	assert.Empty(t, AuthenticationUsers.Protected(RoleAdminUser, RoleRegisteredUser))
}

func TestAuthenticationUser_UpdateKeepsPermissionsWhenWhitelisted(t *testing.T) {
	u := CreateEntry(NewAuthenticationUser(AuthenticationUserParams{Sub: "s", Email: "a@x.io"}, true), CreateOptions{})

	entry := UpdateEntry(u, UpdateOptions{WhiteList: []string{FieldPermissions}})
	assert.Equal(t, []string{FieldPermissions, FieldUpdated}, entry.Names())
	assert.Equal(t, "", u.Email)
}

func TestRole_ParseAndYAML(t *testing.T) {
	r, err := ParseRole("ADMIN_USER")
	require.NoError(t, err)
	assert.Equal(t, RoleAdminUser, r)

	_, err = ParseRole("admin")
	assert.Error(t, err)

	var p Permission
	require.NoError(t, yaml.Unmarshal([]byte("resourceType: GLOBAL\nresourceId: '*'\nroles: [WEBSITE_USER]\n"), &p))
	assert.Equal(t, NewPermission(ResourceGlobal, "*", RoleWebsiteUser), p)

	assert.Error(t, yaml.Unmarshal([]byte("roles: [NOPE]\n"), &p))
}
