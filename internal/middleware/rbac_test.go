package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func roleApp(role string, guard fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		c.Locals("user_role", role)
		return c.Next()
	})
	app.Use(guard)
	app.Get("/staff", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireStaffAllowsAdminsAndModerators(t *testing.T) {
	for _, role := range []string{"admin", "Moderator"} {
		resp, err := roleApp(role, RequireStaff()).Test(httptest.NewRequest(http.MethodGet, "/staff", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, role)
	}
}

func TestRequireStaffRejectsStudents(t *testing.T) {
	resp, err := roleApp("student", RequireStaff()).Test(httptest.NewRequest(http.MethodGet, "/staff", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
	resp, err := roleApp("", RequireRole("admin")).Test(httptest.NewRequest(http.MethodGet, "/staff", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
