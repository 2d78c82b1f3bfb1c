package auth

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"dbmodel/internal/errors"
	"dbmodel/internal/model"
)

const contextKey = "claims"

// Middleware authenticates requests with a bearer token issued by s.
func (s *JWTService) Middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  contextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return s.ValidateToken(token)
		},
	})
}

// ClaimsFrom returns the claims of an authenticated request, or nil.
func ClaimsFrom(c echo.Context) *Claims {
	claims, _ := c.Get(contextKey).(*Claims)
	return claims
}

// RequireRole rejects requests whose token lacks r.
func RequireRole(r model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !ClaimsFrom(c).HasRole(r) {
				return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
					Error: errors.ErrForbidden.Error(),
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}
