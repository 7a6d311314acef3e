package middleware

import (
	"errors"

	"github.com/fra-atlas/atlas-backend/internal/apperr"
	"github.com/fra-atlas/atlas-backend/internal/config"
	"github.com/fra-atlas/atlas-backend/internal/dto"
	"github.com/fra-atlas/atlas-backend/internal/services"
	"github.com/fra-atlas/atlas-backend/internal/tenant"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c, classifyTokenError(err))
		},
	})
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
		return apperr.ErrTokenMissing
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperr.ErrTokenExpired
	default:
		return apperr.ErrTokenInvalid
	}
}

// CurrentUser resolves the token subject to a stored user and makes it
// available through tenant.Actor. It must run after JWTProtected.
func CurrentUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := tenant.GetUserID(c)
		if err != nil {
			return unauthorized(c, apperr.ErrTokenInvalid)
		}

		user, err := auth.Authenticate(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, apperr.ErrAuthenticationFailed) {
				return unauthorized(c, err)
			}
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Internal server error",
			})
		}

		tenant.SetActor(c, user)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, err error) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized: " + err.Error(),
	})
}
