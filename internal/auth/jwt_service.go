package auth

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"dbmodel/internal/model"
)

// AccessTokenExpiry is the duration for which access tokens are valid.
const AccessTokenExpiry = 15 * time.Minute

// ErrInvalidToken is returned for tokens that fail validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents JWT claims. The subject is the user's sub.
type Claims struct {
	Email string       `json:"email"`
	Roles []model.Role `json:"roles"`
	jwt.RegisteredClaims
}

// HasRole reports whether the token grants r.
func (c *Claims) HasRole(r model.Role) bool {
	return c != nil && slices.Contains(c.Roles, r)
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// GenerateAccessToken issues a token for user carrying the roles of their
// permissions.
func (s *JWTService) GenerateAccessToken(user *model.AuthenticationUser) (string, error) {
	return s.GenerateToken(user.Sub, user.Email, user.Roles(), AccessTokenExpiry)
}

// GenerateToken issues a token valid for ttl.
func (s *JWTService) GenerateToken(sub, email string, roles []model.Role, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	for _, r := range claims.Roles {
		if !r.Valid() {
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}
