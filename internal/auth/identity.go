// Package auth extracts the caller's external identity from a bearer token.
// The token is issued by the external identity provider; the core trusts its
// subject claim and never authenticates beyond the signature check.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const identityLocal = "identityKey"

// Middleware validates the bearer token and stores the identity key in the
// request locals. Requests without a valid token pass through anonymously;
// handlers that need an identity use RequireIdentity.
func Middleware(c *fiber.Ctx) error {
	tokenStr := extractTokenFromHeader(c.Get("Authorization"))
	if tokenStr == "" {
		return c.Next()
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "JWT secret not set"})
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return c.Next()
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Next()
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return c.Next()
	}

	c.Locals(identityLocal, sub)
	return c.Next()
}

// Identity returns the external identity key set by Middleware.
func Identity(c *fiber.Ctx) (string, error) {
	key, ok := c.Locals(identityLocal).(string)
	if !ok || key == "" {
		return "", errors.New("identity key not found in request")
	}
	return key, nil
}

// RequireIdentity rejects anonymous requests.
func RequireIdentity(c *fiber.Ctx) error {
	if _, err := Identity(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	return c.Next()
}

func extractTokenFromHeader(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
