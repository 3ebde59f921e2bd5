package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/nepses-go-api/internal/models"
	"github.com/noah-isme/nepses-go-api/internal/utils"
)

const forbiddenKind = "ForbiddenError"

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := allowed[currentRole(c)]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, forbiddenKind, "Insufficient permissions")
		}
		return c.Next()
	}
}

// RequireStaff admits admins and moderators.
func RequireStaff() fiber.Handler {
	return RequireRole(models.RoleAdmin, models.RoleModerator)
}

func currentRole(c *fiber.Ctx) string {
	role, _ := c.Locals("user_role").(string)
	return strings.ToLower(strings.TrimSpace(role))
}
