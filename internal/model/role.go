package model

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Role is a named capability granted through a Permission.
type Role string

const (
	// Global roles.
	RoleWebsiteUser    Role = "WEBSITE_USER"
	RoleRegisteredUser Role = "REGISTERED_USER"

	// Company roles.
	RoleCompanyUser  Role = "COMPANY_USER"
	RoleCompanyOwner Role = "COMPANY_OWNER"

	// Admin roles.
	RoleAdminUser    Role = "ADMIN_USER"
	RoleAdminCompany Role = "ADMIN_COMPANY"
)

// Roles lists every known role.
var Roles = []Role{
	RoleWebsiteUser,
	RoleRegisteredUser,
	RoleCompanyUser,
	RoleCompanyOwner,
	RoleAdminUser,
	RoleAdminCompany,
}

// ParseRole returns the Role named s.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// UnmarshalJSON rejects unknown role names.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// UnmarshalYAML rejects unknown role names.
func (r *Role) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ResourceType scopes a Permission.
type ResourceType string

const (
	ResourceGlobal  ResourceType = "GLOBAL"
	ResourceCompany ResourceType = "COMPANY"
)

// ParseResourceType returns the ResourceType named s.
func ParseResourceType(s string) (ResourceType, error) {
	switch t := ResourceType(s); t {
	case ResourceGlobal, ResourceCompany:
		return t, nil
	default:
		return "", fmt.Errorf("invalid resource type %q", s)
	}
}

func (t ResourceType) String() string { return string(t) }

// UnmarshalJSON rejects unknown resource types.
func (t *ResourceType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseResourceType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalYAML rejects unknown resource types.
func (t *ResourceType) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseResourceType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
