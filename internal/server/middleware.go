package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/julianstephens/streakly/internal/auth"
)

// Protected verifies the bearer token and stores its subject in c.Locals("userId").
func Protected(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization format",
			})
		}

		claims, err := auth.ParseToken(secret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("userId", claims.Subject)
		c.Locals("email", claims.Email)
		return c.Next()
	}
}

// SameUser rejects requests whose :userId differs from the token subject.
func SameUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Params("userId") != GetUserID(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Token does not grant access to this user",
			})
		}
		return c.Next()
	}
}

// GetUserID extracts the authenticated user id from context
func GetUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("userId").(string)
	return userID
}
