package middleware

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	appErrors "github.com/johnquangdev/meeting-analyzer/errors"
	"github.com/johnquangdev/meeting-analyzer/pkg/jwt"
)

// Echo context keys set by EchoAuth
const (
	ContextUserID = "user_id"
	ContextEmail  = "user_email"
)

// TokenVerifier validates bearer tokens
type TokenVerifier interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// ErrorWriter renders an AppError as the HTTP response
type ErrorWriter func(c echo.Context, err error) error

// EchoAuth returns an Echo middleware that validates the JWT and sets
// "user_id" (uuid.UUID) into the Echo context
func EchoAuth(verifier TokenVerifier, writeError ErrorWriter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ExtractToken(c)
			if token == "" {
				return writeError(c, appErrors.ErrUnauthenticated())
			}

			claims, err := verifier.ValidateAccessToken(token)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return writeError(c, appErrors.ErrTokenExpired())
				}
				return writeError(c, appErrors.ErrInvalidToken(err))
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextEmail, claims.Email)
			return next(c)
		}
	}
}

// ExtractToken reads the token from the Authorization header, then the
// access_token cookie
func ExtractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// UserID returns the authenticated user id, or uuid.Nil
func UserID(c echo.Context) uuid.UUID {
	id, _ := c.Get(ContextUserID).(uuid.UUID)
	return id
}
