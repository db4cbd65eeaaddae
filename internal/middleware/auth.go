// Package middleware provides authentication, logging, metrics and rate limiting middleware.
package middleware

import (
	"context"
	"strconv"
	"strings"
	"time"

	"catalog/internal/config"
	"catalog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const (
	// TokenIssuer is the iss claim of every token the API signs.
	TokenIssuer = "catalog-api"
	// TokenAudience is the aud claim of every token the API signs.
	TokenAudience = "catalog-client"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// BlacklistKey is the Redis key marking a revoked token id.
func BlacklistKey(jti string) string {
	return "blacklist:" + jti
}

// AuthRequired enforces a valid bearer token and stores the caller in locals:
// "userID" (uint), "username" (string), "jti" (string) and "tokenExp" (time.Time).
// Revoked token ids are looked up in Redis when a client is available.
func AuthRequired(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization header required"))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid authorization header format"))
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(cfg.JWTSecret), nil
		}, jwt.WithIssuer(TokenIssuer), jwt.WithAudience(TokenAudience))
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token structure - missing subject"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		username, _ := claims["username"].(string)
		if username == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token structure - missing username"))
		}

		jti, _ := claims["jti"].(string)
		if jti != "" && rdb != nil {
			revoked, err := rdb.Exists(c.UserContext(), BlacklistKey(jti)).Result()
			if err == nil && revoked > 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		var exp time.Time
		if expClaim, err := claims.GetExpirationTime(); err == nil && expClaim != nil {
			exp = expClaim.Time
		}

		c.Locals("userID", uint(userID))
		c.Locals("username", username)
		c.Locals("jti", jti)
		c.Locals("tokenExp", exp)

		ctx := context.WithValue(c.UserContext(), UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}
