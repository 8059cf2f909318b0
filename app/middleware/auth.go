package middleware

import (
	"net/http"
	"strings"

	httpdto "github.com/vibast-solutions/ms-go-sleep/app/dto/http"
	"github.com/vibast-solutions/ms-go-sleep/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type accessTokenValidator interface {
	ValidateAccessToken(tokenString string) (*service.Claims, error)
}

type AuthMiddleware struct {
	authService accessTokenValidator
}

func NewAuthMiddleware(authService accessTokenValidator) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// RequireAuth verifies the bearer access token and attaches the resolved
// identity to the request context. Protected handlers never run without it.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			logrus.Debug("Missing authorization header")
			return c.JSON(http.StatusUnauthorized,
				httpdto.NewErrorResponse(http.StatusUnauthorized, "missing authorization header"))
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logrus.Debug("Invalid authorization header format")
			return c.JSON(http.StatusUnauthorized,
				httpdto.NewErrorResponse(http.StatusUnauthorized, "invalid authorization header format"))
		}

		claims, err := m.authService.ValidateAccessToken(parts[1])
		if err != nil {
			logrus.Debug("Invalid or expired access token")
			return c.JSON(http.StatusUnauthorized,
				httpdto.NewErrorResponse(http.StatusUnauthorized, "invalid or expired token"))
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_nickname", claims.Nickname)

		return next(c)
	}
}
