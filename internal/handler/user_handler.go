package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dbmodel/internal/auth"
	"dbmodel/internal/errors"
	"dbmodel/internal/model"
	"dbmodel/internal/service"
	"dbmodel/internal/view"
)

// UserHandler handles authentication user endpoints. Responses are redacted
// according to the caller's roles.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func callerRoles(c echo.Context) []model.Role {
	if claims := auth.ClaimsFrom(c); claims != nil {
		return claims.Roles
	}
	return nil
}

func fail(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func bindView(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}
	return nil
}

func (h *UserHandler) respond(c echo.Context, status int, user *model.AuthenticationUser) error {
	return c.JSON(status, service.Redact(user, callerRoles(c)))
}

// CreateUser godoc
// @Summary Create user
// @Description New users receive the default permissions.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body view.AuthenticationUserCreate true "User payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req view.AuthenticationUserCreate
	if err := bindView(c, &req); err != nil {
		return err
	}
	created, err := h.svc.CreateUser(c.Request().Context(), req.Params())
	if err != nil {
		return fail(err)
	}
	return h.respond(c, http.StatusCreated, created)
}

// GetUser godoc
// @Summary Get user by email
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param email path string true "User email"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{email} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.svc.GetUser(c.Request().Context(), c.Param("email"))
	if err != nil {
		return fail(err)
	}
	return h.respond(c, http.StatusOK, user)
}

// GetUserBySub godoc
// @Summary Get user by identity provider subject
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param sub path string true "Subject"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/by-sub/{sub} [get]
func (h *UserHandler) GetUserBySub(c echo.Context) error {
	user, err := h.svc.GetUserBySub(c.Request().Context(), c.Param("sub"))
	if err != nil {
		return fail(err)
	}
	return h.respond(c, http.StatusOK, user)
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]interface{}
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	roles := callerRoles(c)
	out := make([]model.Entry, len(users))
	for i, u := range users {
		out[i] = service.Redact(u, roles)
	}
	return c.JSON(http.StatusOK, out)
}

// ReplaceUser godoc
// @Summary Replace user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param email path string true "User email"
// @Param user body view.AuthenticationUserReplace true "User payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{email} [put]
func (h *UserHandler) ReplaceUser(c echo.Context) error {
	var req view.AuthenticationUserReplace
	if err := bindView(c, &req); err != nil {
		return err
	}
	updated, err := h.svc.ReplaceUser(c.Request().Context(), req.Params(c.Param("email")))
	if err != nil {
		return fail(err)
	}
	return h.respond(c, http.StatusOK, updated)
}

// PatchUser godoc
// @Summary Update user fields
// @Description Only the supplied fields are written.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param email path string true "User email"
// @Param user body view.AuthenticationUserPatch true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{email} [patch]
func (h *UserHandler) PatchUser(c echo.Context) error {
	var req view.AuthenticationUserPatch
	if err := bindView(c, &req); err != nil {
		return err
	}
	updated, err := h.svc.PatchUser(c.Request().Context(), req.Params(c.Param("email")), view.Supplied(req))
	if err != nil {
		return fail(err)
	}
	return h.respond(c, http.StatusOK, updated)
}

// DeleteUser godoc
// @Summary Delete user
// @Tags users
// @Security BearerAuth
// @Param email path string true "User email"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{email} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	if err := h.svc.DeleteUser(c.Request().Context(), c.Param("email")); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
