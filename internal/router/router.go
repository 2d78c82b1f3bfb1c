package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"dbmodel/internal/auth"
	"dbmodel/internal/handler"
	"dbmodel/internal/logging"
	"dbmodel/internal/model"
	"dbmodel/internal/view"
)

// Register wires routes and middleware. It panics when a request view
// exposes a field its policy does not allow.
func Register(
	e *echo.Echo,
	log zerolog.Logger,
	jwtService *auth.JWTService,
	userHandler *handler.UserHandler,
) {
	view.AuthenticationUserViews.MustValidate()

	e.Use(middleware.RequestID())
	e.Use(logging.Middleware(log))
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Secured routes (require JWT authentication)
	secured := api.Group("", jwtService.Middleware())
	admin := auth.RequireRole(model.RoleAdminUser)

	secured.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, auth.ClaimsFrom(c))
	})

	secured.POST("/users", userHandler.CreateUser)
	secured.GET("/users", userHandler.ListUsers)
	secured.GET("/users/by-sub/:sub", userHandler.GetUserBySub)
	secured.GET("/users/:email", userHandler.GetUser)
	secured.PUT("/users/:email", userHandler.ReplaceUser, admin)
	secured.PATCH("/users/:email", userHandler.PatchUser, admin)
	secured.DELETE("/users/:email", userHandler.DeleteUser, admin)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
