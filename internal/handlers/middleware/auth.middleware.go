package middleware

import (
	"errors"
	"strings"

	"turnover/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleManager = "manager"
	RoleWorker  = "worker"

	ClaimsLocalKey = "Claims"
)

// Claims identifies the caller. Workers carry their worker id; managers only
// carry the role. Token issuance lives with the identity provider, not here.
type Claims struct {
	WorkerID string `json:"workerId,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// RequireAuth validates the bearer token and stores the claims in locals.
func (m *Middleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.New("middleware").Function("RequireAuth")

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		claims := &Claims{}
		parsed, err := jwt.ParseWithClaims(
			tokenParts[1],
			claims,
			func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(m.Config.JWTSecret), nil
			},
		)
		if err != nil || !parsed.Valid {
			log.Info("token validation failed", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		if claims.Role != RoleManager && claims.Role != RoleWorker {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid role",
			})
		}

		c.Locals(ClaimsLocalKey, claims)

		return c.Next()
	}
}

// RequireRole gates a route to a single role. Must run after RequireAuth.
func (m *Middleware) RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := GetClaims(c)
		if claims == nil || claims.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient role",
			})
		}

		return c.Next()
	}
}

// GetClaims retrieves the authenticated caller's claims from Fiber context.
func GetClaims(c *fiber.Ctx) *Claims {
	if claims, ok := c.Locals(ClaimsLocalKey).(*Claims); ok {
		return claims
	}
	return nil
}

// GetWorkerID parses the caller's worker id, if present.
func GetWorkerID(c *fiber.Ctx) (uuid.UUID, bool) {
	claims := GetClaims(c)
	if claims == nil || claims.WorkerID == "" {
		return uuid.Nil, false
	}

	workerID, err := uuid.Parse(claims.WorkerID)
	if err != nil {
		return uuid.Nil, false
	}

	return workerID, true
}
