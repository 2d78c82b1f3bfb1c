package view

import "dbmodel/internal/model"

// AuthenticationUserCreate is the POST body for a user. Permissions are not
// accepted: new users get the default set.
type AuthenticationUserCreate struct {
	Sub   string `json:"sub" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// Params converts the view to factory params.
func (v AuthenticationUserCreate) Params() model.AuthenticationUserParams {
	return model.AuthenticationUserParams{Sub: v.Sub, Email: v.Email}
}

// AuthenticationUserReplace is the PUT body for a user; the email comes from
// the path.
type AuthenticationUserReplace struct {
	Sub         string             `json:"sub" validate:"required"`
	Permissions []model.Permission `json:"permissions" validate:"required,dive"`
}

// Params converts the view to factory params.
func (v AuthenticationUserReplace) Params(email string) model.AuthenticationUserParams {
	return model.AuthenticationUserParams{
		Sub:         v.Sub,
		Email:       email,
		Permissions: v.Permissions,
	}
}

// AuthenticationUserPatch is the PATCH body for a user. Omitted fields are
// left untouched.
type AuthenticationUserPatch struct {
	Sub         *string            `json:"sub,omitempty" validate:"omitempty,min=1"`
	Permissions []model.Permission `json:"permissions,omitempty" validate:"omitempty,dive"`
}

// Params converts the view to factory params.
func (v AuthenticationUserPatch) Params(email string) model.AuthenticationUserParams {
	p := model.AuthenticationUserParams{Email: email, Permissions: v.Permissions}
	if v.Sub != nil {
		p.Sub = *v.Sub
	}
	return p
}

// AuthenticationUserViews are the request views of model.AuthenticationUser.
var AuthenticationUserViews = Set{
	Fields: model.AuthenticationUsers.FieldNames(),
	Create: Policy{
		Deny: []string{model.FieldPermissions},
	},
	Replace: Policy{
		PathParameters: PathFields(model.AuthenticationUsers.PartitionKey),
	},
	Patch: Policy{
		PathParameters: PathFields(model.AuthenticationUsers.PartitionKey),
	},
	CreateView:  AuthenticationUserCreate{},
	ReplaceView: AuthenticationUserReplace{},
	PatchView:   AuthenticationUserPatch{},
}
