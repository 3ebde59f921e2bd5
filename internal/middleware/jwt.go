package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/nepses-go-api/internal/utils"
)

const unauthorizedKind = "UnauthorizedError"

// JWTProtected validates HS256 bearer tokens and stores the caller's id and
// role in locals as user_id (uint) and user_role (string).
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, unauthorizedKind, "Authorization header missing")
		}

		const bearer = "bearer "
		if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, unauthorizedKind, "Invalid authorization header")
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(strings.TrimSpace(authorization[len(bearer):]), claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, unauthorizedKind, "Invalid or expired token")
		}

		userID, ok := subjectID(claims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, unauthorizedKind, "Invalid token claims")
		}

		c.Locals("user_id", userID)
		c.Locals("user_role", claimRole(claims))
		return c.Next()
	}
}

func subjectID(claims jwt.MapClaims) (uint, bool) {
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return 0, false
	}
	parsed, err := strconv.ParseUint(subject, 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}

func claimRole(claims jwt.MapClaims) string {
	role, _ := claims["role"].(string)
	return strings.ToLower(strings.TrimSpace(role))
}
