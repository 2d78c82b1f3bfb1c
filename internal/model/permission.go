package model

import "slices"

// Permission grants roles on a resource. It is a value owned by the record
// that lists it, not a stored record of its own.
type Permission struct {
	ResourceType ResourceType `json:"resourceType" yaml:"resourceType" validate:"required"`
	ResourceID   string       `json:"resourceId" yaml:"resourceId" validate:"required"`
	Roles        []Role       `json:"roles" yaml:"roles"`
}

// NewPermission builds a Permission.
func NewPermission(resourceType ResourceType, resourceID string, roles ...Role) Permission {
	return Permission{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Roles:        append([]Role{}, roles...),
	}
}

// Clone returns a deep copy.
func (p Permission) Clone() Permission {
	p.Roles = append([]Role{}, p.Roles...)
	return p
}

// ClonePermissions deep-copies perms; nil stays nil.
func ClonePermissions(perms []Permission) []Permission {
	if perms == nil {
		return nil
	}
	out := make([]Permission, len(perms))
	for i, p := range perms {
		out[i] = p.Clone()
	}
	return out
}

// RolesOf returns the distinct roles granted by perms, in first-seen order.
func RolesOf(perms []Permission) []Role {
	var roles []Role
	for _, p := range perms {
		for _, r := range p.Roles {
			if !slices.Contains(roles, r) {
				roles = append(roles, r)
			}
		}
	}
	return roles
}
