package tenant

import (
	"errors"

	"github.com/fra-atlas/atlas-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const actorKey = "actor"

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}

// SetActor stores the authenticated user for the current request.
func SetActor(c *fiber.Ctx, u *models.User) {
	c.Locals(actorKey, u)
}

// Actor returns the authenticated user, or nil when the request carries none.
func Actor(c *fiber.Ctx) *models.User {
	if u, ok := c.Locals(actorKey).(*models.User); ok {
		return u
	}
	return nil
}
