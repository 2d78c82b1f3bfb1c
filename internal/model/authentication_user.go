package model

// AuthenticationUserType is the registry tag of AuthenticationUser.
const AuthenticationUserType = "authentication-user"

// Field names of AuthenticationUser.
const (
	FieldSub         = "sub"
	FieldEmail       = "email"
	FieldPermissions = "permissions"
)

// AuthenticationUser is the identity record of a signed-in user.
type AuthenticationUser struct {
	Base
	Sub         string       `json:"sub"`
	Email       string       `json:"email"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// AuthenticationUserParams is the JSON shape AuthenticationUser is built from.
type AuthenticationUserParams struct {
	Base
	Sub         string       `json:"sub"`
	Email       string       `json:"email"`
	Permissions []Permission `json:"permissions"`
}

// DataFields implements Model.
func (u *AuthenticationUser) DataFields() []Field {
	return []Field{
		Value(FieldSub, &u.Sub),
		Value(FieldEmail, &u.Email),
		Slice(FieldPermissions, &u.Permissions),
	}
}

// Roles returns the roles granted by the user's permissions.
func (u *AuthenticationUser) Roles() []Role {
	return RolesOf(u.Permissions)
}

// DefaultPermissions returns a fresh copy of the permissions every new user
// receives.
func DefaultPermissions() []Permission {
	return []Permission{
		NewPermission(ResourceGlobal, "*", RoleWebsiteUser),
		NewPermission(ResourceGlobal, "*", RoleRegisteredUser),
	}
}

// NewAuthenticationUser is the AuthenticationUser factory. Without explicit
// permissions the user gets DefaultPermissions when withDefaults is set and
// an empty list otherwise.
func NewAuthenticationUser(p AuthenticationUserParams, withDefaults bool) *AuthenticationUser {
	perms := ClonePermissions(p.Permissions)
	if perms == nil {
		if withDefaults {
			perms = DefaultPermissions()
		} else {
			perms = []Permission{}
		}
	}
	return &AuthenticationUser{
		Sub:         p.Sub,
		Email:       p.Email,
		Permissions: perms,
	}
}

// AuthenticationUsers is the registered definition of AuthenticationUser.
// Users are addressed by email; sub is a secondary key.
var AuthenticationUsers = Register(&Definition[*AuthenticationUser, AuthenticationUserParams]{
	Type:   AuthenticationUserType,
	Create: NewAuthenticationUser,
	PartitionKey: KeyAttribute{
		Attribute:     FieldEmail,
		PathParameter: "email",
	},
	SecondaryKeys: []KeyAttribute{
		{Attribute: FieldSub, PathParameter: "sub"},
	},
	ProtectedFields: map[Role][]string{
		RoleAdminUser:      {FieldPermissions},
		RoleRegisteredUser: {FieldSub},
	},
})
