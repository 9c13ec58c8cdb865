package sessions

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"covidrisk/internal/predictions"
)

const localsKey = "workspace"

// Middleware attaches the session's workspace to the request. It must run
// after the Fiber session middleware.
func (m *Manager) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		sess := session.FromContext(c)
		if sess == nil {
			return c.Next()
		}
		if sess.Get(localsKey) == nil {
			// Marks the session as modified so its cookie is issued.
			sess.Set(localsKey, true)
		}
		c.Locals(localsKey, m.Get(sess.ID()))
		return c.Next()
	}
}

// FromContext returns the request's workspace.
func FromContext(c fiber.Ctx) (*Workspace, error) {
	ws, ok := c.Locals(localsKey).(*Workspace)
	if !ok || ws == nil {
		return nil, ErrNoWorkspace
	}
	return ws, nil
}

// StoreFrom returns the request's prediction history.
func StoreFrom(c fiber.Ctx) (*predictions.Store, error) {
	ws, err := FromContext(c)
	if err != nil {
		return nil, err
	}
	return ws.Store(), nil
}
