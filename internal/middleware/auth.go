package middleware

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/policy"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenKey    = "user"
	identityKey = "identity"
)

// AccountCheck reports whether the token subject still exists and may act.
type AccountCheck func(ctx context.Context, userID uuid.UUID) (bool, error)

// JWTProtected requires a valid access token. When check is given, tokens of
// deleted or deactivated users are rejected before they expire.
func JWTProtected(secret string, check ...AccountCheck) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(secret)},
		ContextKey: tokenKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			id := Identity(c)
			if id == nil {
				return unauthorized(c)
			}
			for _, fn := range check {
				ok, err := fn(c.UserContext(), id.UserID)
				if err != nil {
					return err
				}
				if !ok {
					return unauthorized(c)
				}
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c)
		},
	})
}

// JWTOptional authenticates the request when an Authorization header is
// present and lets anonymous requests through. A bad token is still a 401.
func JWTOptional(secret string, check ...AccountCheck) fiber.Handler {
	protected := JWTProtected(secret, check...)
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		return protected(c)
	}
}

// Identity returns the caller resolved from the verified token, or nil for
// anonymous requests.
func Identity(c *fiber.Ctx) *policy.Identity {
	if id, ok := c.Locals(identityKey).(*policy.Identity); ok {
		return id
	}

	token, ok := c.Locals(tokenKey).(*jwt.Token)
	if !ok || token == nil {
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		role = string(models.RoleUser)
	}

	id := &policy.Identity{UserID: userID, Email: email, Role: models.Role(role)}
	c.Locals(identityKey, id)
	return id
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized: invalid or expired token",
	})
}
