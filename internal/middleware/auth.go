package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"covidrisk/internal/models"
)

// Session keys written by the auth handler.
const (
	SessionUserSub   = "user_sub"
	SessionUserEmail = "user_email"
	SessionUserName  = "user_name"
	SessionRedirect  = "redirect_after_login"
)

// AuthMiddleware gates pages behind an OIDC login when one is configured.
type AuthMiddleware struct {
	enabled bool
}

// NewAuthMiddleware creates a new auth middleware instance. When enabled is
// false every request passes through anonymously.
func NewAuthMiddleware(enabled bool) *AuthMiddleware {
	return &AuthMiddleware{enabled: enabled}
}

// RequireAuth ensures the user is authenticated, redirecting to /auth/login if not.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	if !m.enabled {
		return c.Next()
	}

	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	user := userFromSession(sess)
	if user == nil {
		if c.Method() == fiber.MethodGet {
			sess.Set(SessionRedirect, c.OriginalURL())
		}
		if c.Get("HX-Request") == "true" {
			c.Set("HX-Redirect", "/auth/login")
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.Redirect().To("/auth/login")
	}

	c.Locals("user", user)
	return c.Next()
}

func userFromSession(sess *session.Middleware) *models.User {
	sub, _ := sess.Get(SessionUserSub).(string)
	if sub == "" {
		return nil
	}
	email, _ := sess.Get(SessionUserEmail).(string)
	name, _ := sess.Get(SessionUserName).(string)
	return &models.User{Sub: sub, Email: email, Name: name}
}
