package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/chat-hub/modules/auth"
)

// Locals keys for authenticated identity.
const (
	userIDKey   = "user_id"
	usernameKey = "username"
)

// AuthMiddleware validates Bearer tokens on the REST surface.
func AuthMiddleware(authPort auth.Port) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return unauthorized(c, "Authorization header is required")
		}
		if !strings.HasPrefix(header, "Bearer ") {
			return unauthorized(c, "Invalid authorization header format. Use: Bearer <token>")
		}
		token := strings.TrimPrefix(header, "Bearer ")

		resp, err := authPort.ValidateToken(c.UserContext(), token)
		if err != nil || !resp.Valid {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(userIDKey, resp.UserID)
		c.Locals(usernameKey, resp.Username)
		return c.Next()
	}
}

// WebSocketAuthMiddleware validates the credential presented on the /ws
// upgrade. Admission happens here, before any upgrade: a missing, invalid,
// or expired token is rejected with 401 and no session state is ever
// created. On success the authenticated identity rides the upgrade via
// Locals.
func WebSocketAuthMiddleware(authPort auth.Port) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			// Browsers cannot set headers on WebSocket upgrades, so the
			// token is usually a query parameter; accept a header too.
			token = strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		}

		resp, err := authPort.ValidateToken(c.UserContext(), token)
		if err != nil {
			return unauthorized(c, "Could not validate credential")
		}
		if !resp.Valid {
			switch resp.Error {
			case "missing":
				return unauthorized(c, "Credential is required")
			case "expired":
				return unauthorized(c, "Credential has expired")
			default:
				return unauthorized(c, "Invalid credential")
			}
		}

		c.Locals(userIDKey, resp.UserID)
		c.Locals(usernameKey, resp.Username)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: message,
	})
}
