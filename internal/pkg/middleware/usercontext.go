package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/churchatlas/churchatlas/internal/pkg/session"
	icuser "github.com/churchatlas/churchatlas/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the session once per request and exposes the
// result via Locals so controllers never have to touch the session store.
func UserContextMiddleware(c *fiber.Ctx) error {
	// goth_fiber manages its own session during the OAuth dance; keep out of its way
	if strings.HasPrefix(c.Path(), "/auth/") {
		c.Locals(icuser.KeyFromProtected, false)
		c.Locals("USER_CONTEXT", icuser.UserContext{IsLoggedIn: false})
		return c.Next()
	}

	userCtx := icuser.UserContext{IsLoggedIn: false}

	store := session.GetSessionStore()
	if store != nil {
		if sess, err := store.Get(c); err == nil {
			if auth, ok := sess.Get(icuser.AuthKey).(bool); ok && auth {
				userCtx.IsLoggedIn = true
				if id, ok := sess.Get(icuser.KeyUserID).(uint); ok {
					userCtx.UserID = id
				}
				if name, ok := sess.Get(icuser.KeyUsername).(string); ok {
					userCtx.Username = name
				}
				if isAdmin, ok := sess.Get(icuser.KeyIsAdmin).(bool); ok {
					userCtx.IsAdmin = isAdmin
				}
			}
		}
	}

	c.Locals("USER_CONTEXT", userCtx)
	c.Locals(icuser.KeyFromProtected, userCtx.IsLoggedIn)
	c.Locals(icuser.KeyUserID, userCtx.UserID)
	c.Locals(icuser.KeyUsername, userCtx.Username)
	c.Locals(icuser.KeyIsAdmin, userCtx.IsAdmin)

	return c.Next()
}
