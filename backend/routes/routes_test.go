package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"dailytracker/backend/config"
	"dailytracker/backend/middleware"
	"dailytracker/backend/models"
	"dailytracker/backend/routes"
	"dailytracker/backend/utils"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, utils.MigrateSchema(db))

	cfg := &config.Config{
		JWTSecret:          "test-secret",
		CookieSameSite:     "Lax",
		TOTPIssuer:         "DailyTracker",
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
	}

	app := fiber.New()
	app.Use(middleware.RequestIDMiddleware())
	routes.SetupRoutes(app, db, cfg, zap.NewNop())
	return app, db
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// register creates an account through the API and returns its token.
func register(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	resp, err := app.Test(jsonRequest("POST", "/api/auth/register", fiber.Map{
		"email":    email,
		"password": password,
		"name":     "Test User",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	return data["token"].(string)
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRegisterAndLogin(t *testing.T) {
	app, _ := newTestApp(t)

	register(t, app, "alice@example.com", "secret123")

	// Duplicate email.
	resp, err := app.Test(jsonRequest("POST", "/api/auth/register", fiber.Map{
		"email":    "Alice@Example.com",
		"password": "secret123",
		"name":     "Alice Again",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Wrong password.
	resp, err = app.Test(jsonRequest("POST", "/api/auth/login", fiber.Map{
		"email":    "alice@example.com",
		"password": "wrong",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(jsonRequest("POST", "/api/auth/login", fiber.Map{
		"email":    "alice@example.com",
		"password": "secret123",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
}

func TestRegisterValidation(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest("POST", "/api/auth/register", fiber.Map{
		"email":    "bob@example.com",
		"password": "short",
		"name":     "Bob",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "ERR_VALIDATION", body["code"])
}

func TestMeRequiresAuth(t *testing.T) {
	app, _ := newTestApp(t)
	token := register(t, app, "alice@example.com", "secret123")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/auth/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(authed(httptest.NewRequest("GET", "/api/auth/me", nil), token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "alice@example.com", data["email"])
}

func TestEntryFlow(t *testing.T) {
	app, _ := newTestApp(t)
	token := register(t, app, "alice@example.com", "secret123")

	resp, err := app.Test(authed(jsonRequest("POST", "/api/groups", fiber.Map{
		"name": "Morning Club",
	}), token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	groupID := uint(body["data"].(map[string]interface{})["ID"].(float64))

	resp, err = app.Test(authed(jsonRequest("POST", "/api/entries", fiber.Map{
		"group_id": groupID,
		"section":  "health",
		"content":  "ran 5k",
	}), token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	target := fmt.Sprintf("/api/entries/?group_id=%d", groupID)
	resp, err = app.Test(authed(httptest.NewRequest("GET", target, nil), token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body = decodeBody(t, resp)
	entries := body["data"].([]interface{})
	assert.Len(t, entries, 1)
}

func TestEntryRequiresMembership(t *testing.T) {
	app, _ := newTestApp(t)
	owner := register(t, app, "owner@example.com", "secret123")
	outsider := register(t, app, "outsider@example.com", "secret123")

	resp, err := app.Test(authed(jsonRequest("POST", "/api/groups", fiber.Map{
		"name": "Private Club",
	}), owner))
	require.NoError(t, err)
	body := decodeBody(t, resp)
	groupID := uint(body["data"].(map[string]interface{})["ID"].(float64))

	resp, err = app.Test(authed(jsonRequest("POST", "/api/entries", fiber.Map{
		"group_id": groupID,
		"section":  "health",
		"content":  "sneaky",
	}), outsider))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAdminRoutesRequireSuperAdmin(t *testing.T) {
	app, db := newTestApp(t)
	token := register(t, app, "user@example.com", "secret123")

	resp, err := app.Test(authed(httptest.NewRequest("GET", "/api/admin/audit-logs", nil), token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Promote the account and retry.
	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "user@example.com").
		Update("role", models.RoleSuperAdmin).Error)

	resp, err = app.Test(authed(httptest.NewRequest("GET", "/api/admin/audit-logs", nil), token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGDPRDeleteRequiresConfirm(t *testing.T) {
	app, _ := newTestApp(t)
	token := register(t, app, "alice@example.com", "secret123")

	resp, err := app.Test(authed(httptest.NewRequest("DELETE", "/api/gdpr/account", nil), token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, err = app.Test(authed(httptest.NewRequest("DELETE", "/api/gdpr/account?confirm=true", nil), token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The session is dead along with the account.
	resp, err = app.Test(authed(httptest.NewRequest("GET", "/api/auth/me", nil), token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
