package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharma_ruche/pkg/cookies"
	"github.com/Skotchmaster/pharma_ruche/pkg/tokens"
)

const AccessCookie = "accessToken"

type AdminGate struct {
	JWTSecret []byte
}

func NewAdminGate(secret []byte) *AdminGate {
	return &AdminGate{JWTSecret: secret}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *AdminGate) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != tokens.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

// IsAdmin reports whether the request carries a valid admin access cookie.
func (m *AdminGate) IsAdmin(c echo.Context) bool {
	claims, ok := m.claims(c)
	return ok && claims.Role == tokens.RoleAdmin
}

func (m *AdminGate) claims(c echo.Context) (*tokens.AccessClaims, bool) {
	accessCookie, err := c.Cookie(AccessCookie)
	if err != nil || accessCookie.Value == "" {
		return nil, false
	}
	claims, err := tokens.AccessClaimsFromToken(accessCookie.Value, m.JWTSecret)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func (m *AdminGate) requireWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		accessCookie, err := c.Cookie(AccessCookie)
		if err != nil || accessCookie.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(accessCookie.Value, m.JWTSecret)
		if err != nil {
			c.SetCookie(cookies.DeleteCookie(AccessCookie, "/"))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		if validator != nil {
			if validationErr := validator(claims); validationErr != nil {
				return validationErr
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set("email", claims.Email)
	c.Set("role", claims.Role)
}
