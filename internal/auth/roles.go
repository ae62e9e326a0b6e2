package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/anamaak-service/pkg/util"
)

// RequireAdmin ensures the authenticated account holds the admin role.
// Must run after Middleware.Handle.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok || !user.IsAdmin() {
			return util.NewForbidden("Accès réservé aux administrateurs")
		}
		return c.Next()
	}
}
