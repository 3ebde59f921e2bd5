package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/nepses-go-api/internal/models"
	"github.com/noah-isme/nepses-go-api/internal/utils"
)

// Audiences accepted by WithAuth.
const (
	AuthRoleAny     = "any"
	AuthRoleStaff   = "staff"
	AuthRoleStudent = "student"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role string
}

// WithAuth guards a single route inside a group that mixes audiences. It
// expects JWTProtected to have run already.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := opts.Role
	if role == "" {
		role = AuthRoleAny
	}

	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals("user_id").(uint); !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, unauthorizedKind, "Authentication required")
		}

		current := currentRole(c)
		switch role {
		case AuthRoleStaff:
			if !models.IsStaffRole(current) {
				return utils.SendError(c, fiber.StatusForbidden, forbiddenKind, "Insufficient permissions")
			}
		case AuthRoleStudent:
			if current != models.RoleStudent {
				return utils.SendError(c, fiber.StatusForbidden, forbiddenKind, "Insufficient permissions")
			}
		}

		return handler(c)
	}
}
