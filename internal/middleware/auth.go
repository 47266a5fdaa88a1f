package middleware

import (
	"context"
	"errors"
	"strings"

	"circle/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	errMissingToken   = errors.New("Authorization required")
	errInvalidToken   = errors.New("Invalid or expired token")
	errInvalidSubject = errors.New("Invalid user ID in token")
)

// AuthRequired rejects requests without a valid HS256 bearer token signed
// with secret. The token subject must be the caller's user id.
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, hint, err := userFromRequest(c, secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
				"code":  models.CodeUnauthorized,
			})
		}
		setUser(c, userID, hint)
		return c.Next()
	}
}

// OptionalAuth sets the caller when a valid token is present and never rejects.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, hint, err := userFromRequest(c, secret); err == nil {
			setUser(c, userID, hint)
		}
		return c.Next()
	}
}

// UserID returns the authenticated caller, or uuid.Nil.
func UserID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals("userID").(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// UserHint returns the email or preferred username carried by the token,
// used to name a profile created on first sight.
func UserHint(c *fiber.Ctx) string {
	hint, _ := c.Locals("userHint").(string)
	return hint
}

func setUser(c *fiber.Ctx, userID uuid.UUID, hint string) {
	c.Locals("userID", userID)
	c.Locals("userHint", hint)
	ctx := context.WithValue(c.UserContext(), UserIDKey, userID)
	c.SetUserContext(ctx)
}

func userFromRequest(c *fiber.Ctx, secret string) (uuid.UUID, string, error) {
	tokenString := ""
	if parts := strings.Split(c.Get("Authorization"), " "); len(parts) == 2 && parts[0] == "Bearer" {
		tokenString = parts[1]
	}
	// Browsers cannot set headers on WebSocket upgrades.
	if tokenString == "" && strings.HasPrefix(c.Path(), "/ws/") {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		return uuid.Nil, "", errMissingToken
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return uuid.Nil, "", errInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, "", errInvalidSubject
	}
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, "", errInvalidSubject
	}

	hint, _ := claims["email"].(string)
	if hint == "" {
		hint, _ = claims["preferred_username"].(string)
	}
	return userID, hint, nil
}
