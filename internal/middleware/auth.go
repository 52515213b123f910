package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/lifeline/backend/internal/models"
	"github.com/lifeline/backend/internal/session"
	"github.com/lifeline/backend/pkg/logger"
	"github.com/lifeline/backend/pkg/utils"
)

const currentIdentityKey = "currentIdentity"

type AuthMiddleware struct {
	Sessions   *session.Store
	CookieName string
}

func NewAuthMiddleware(sessions *session.Store, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{Sessions: sessions, CookieName: cookieName}
}

func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000,http://127.0.0.1:3000",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
	})
}

func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	token := c.Cookies(a.CookieName)
	if token == "" {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	identity, ok := a.Sessions.Resolve(token)
	if !ok {
		logger.Warn("session_invalid", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	c.Locals(currentIdentityKey, &identity)
	c.Locals("userID", identity.UserID.String())
	return c.Next()
}

func (a *AuthMiddleware) OptionalAuth(c *fiber.Ctx) error {
	token := c.Cookies(a.CookieName)
	if token == "" {
		return c.Next()
	}

	identity, ok := a.Sessions.Resolve(token)
	if !ok {
		return c.Next()
	}

	c.Locals(currentIdentityKey, &identity)
	c.Locals("userID", identity.UserID.String())
	return c.Next()
}

func AdminOnly(c *fiber.Ctx) error {
	identity := GetIdentity(c)
	if identity == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	if identity.Role != models.UserRoleAdmin {
		return utils.Error(c, fiber.StatusForbidden, "Forbidden - Admin access required")
	}
	return c.Next()
}

func GetIdentity(c *fiber.Ctx) *session.Identity {
	value := c.Locals(currentIdentityKey)
	if value == nil {
		return nil
	}
	identity, ok := value.(*session.Identity)
	if !ok {
		return nil
	}
	return identity
}
