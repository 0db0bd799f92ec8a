package websockets

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type dashboardClaims struct {
	WorkerID string `json:"workerId,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Client) handleAuthResponse(message Message) {
	log := c.Manager.log.Function("handleAuthResponse")

	if c.Status != STATUS_UNAUTHENTICATED {
		log.Warn("Auth response from already authenticated client", "clientID", c.ID)
		return
	}

	token, ok := message.Data["token"].(string)
	if !ok || token == "" {
		log.Warn("Invalid token in auth response", "clientID", c.ID)
		c.sendAuthFailure("Invalid token format")
		return
	}

	claims := &dashboardClaims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(c.Manager.config.JWTSecret), nil
		},
	)
	if err != nil || !parsed.Valid {
		log.Warn("Token validation failed", "clientID", c.ID, "error", err)
		c.sendAuthFailure("Invalid token")
		return
	}

	role := Role(claims.Role)
	if role != RoleManager && role != RoleWorker {
		log.Warn("Unknown role in token", "clientID", c.ID, "role", claims.Role)
		c.sendAuthFailure("Invalid role")
		return
	}

	if claims.WorkerID != "" {
		workerID, err := uuid.Parse(claims.WorkerID)
		if err != nil {
			log.Warn("Invalid worker id in token", "clientID", c.ID, "workerId", claims.WorkerID)
			c.sendAuthFailure("Invalid worker id")
			return
		}
		c.WorkerID = workerID
	}

	c.Role = role
	c.Status = STATUS_AUTHENTICATED

	log.Info(
		"Client authenticated successfully",
		"clientID", c.ID,
		"workerID", c.WorkerID,
		"role", c.Role,
	)

	c.send <- Message{
		ID:        uuid.New().String(),
		Type:      MESSAGE_TYPE_AUTH_SUCCESS,
		Channel:   "system",
		Timestamp: time.Now(),
	}
}

func (c *Client) sendAuthFailure(reason string) {
	c.send <- Message{
		ID:        uuid.New().String(),
		Type:      MESSAGE_TYPE_AUTH_FAILURE,
		Channel:   "system",
		Data:      map[string]any{"reason": reason},
		Timestamp: time.Now(),
	}
}
