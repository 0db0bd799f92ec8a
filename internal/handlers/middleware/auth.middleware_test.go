package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"turnover/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims Claims, secret string) string {
	t.Helper()

	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func setupAuthApp(t *testing.T) *fiber.App {
	t.Helper()

	m := &Middleware{Config: config.Config{JWTSecret: testSecret}}

	app := fiber.New()
	app.Get("/protected", m.RequireAuth(), func(c *fiber.Ctx) error {
		claims := GetClaims(c)
		return c.JSON(fiber.Map{"role": claims.Role})
	})
	app.Get("/manager", m.RequireAuth(), m.RequireRole(RoleManager), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	return app
}

func request(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestRequireAuth(t *testing.T) {
	app := setupAuthApp(t)

	workerID := uuid.NewString()

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{
			name:       "missing token",
			token:      "",
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			token:      "not-a-jwt",
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "wrong secret",
			token:      signToken(t, Claims{WorkerID: workerID, Role: RoleWorker}, "other-secret"),
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "unknown role",
			token:      signToken(t, Claims{Role: "auditor"}, testSecret),
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "valid worker token",
			token:      signToken(t, Claims{WorkerID: workerID, Role: RoleWorker}, testSecret),
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "valid manager token",
			token:      signToken(t, Claims{Role: RoleManager}, testSecret),
			wantStatus: fiber.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := request(t, app, "/protected", tt.token)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRequireRole(t *testing.T) {
	app := setupAuthApp(t)

	workerToken := signToken(t, Claims{WorkerID: uuid.NewString(), Role: RoleWorker}, testSecret)
	managerToken := signToken(t, Claims{Role: RoleManager}, testSecret)

	resp := request(t, app, "/manager", workerToken)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = request(t, app, "/manager", managerToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGetWorkerID(t *testing.T) {
	m := &Middleware{Config: config.Config{JWTSecret: testSecret}}

	workerID := uuid.New()
	var got uuid.UUID
	var ok bool

	app := fiber.New()
	app.Get("/id", m.RequireAuth(), func(c *fiber.Ctx) error {
		got, ok = GetWorkerID(c)
		return c.SendStatus(fiber.StatusOK)
	})

	token := signToken(t, Claims{WorkerID: workerID.String(), Role: RoleWorker}, testSecret)
	resp := request(t, app, "/id", token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, ok)
	assert.Equal(t, workerID, got)

	// Manager tokens carry no worker identity.
	managerToken := signToken(t, Claims{Role: RoleManager}, testSecret)
	resp = request(t, app, "/id", managerToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.False(t, ok)
}
