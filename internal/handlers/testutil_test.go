package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lifeline/backend/internal/config"
	"github.com/lifeline/backend/internal/database"
	"github.com/lifeline/backend/internal/middleware"
	"github.com/lifeline/backend/internal/models"
	"github.com/lifeline/backend/internal/services"
	"github.com/lifeline/backend/internal/session"
	"github.com/lifeline/backend/pkg/logger"
	"github.com/lifeline/backend/pkg/utils"
	"gorm.io/gorm"
)

const testCookieName = "lifeline_session"

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	sessions *session.Store
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	sessions := session.NewStore(24 * time.Hour)
	sessionCfg := config.SessionConfig{CookieName: testCookieName, TTLHours: 24}

	auditService := services.NewAuditService(db)

	authHandler := NewAuthHandler(db, sessions, auditService, sessionCfg)
	donorsHandler := NewDonorsHandler(db)
	requestsHandler := NewRequestsHandler(db)
	messagesHandler := NewMessagesHandler(db)
	adminHandler := NewAdminHandler(db, auditService)

	authMiddleware := middleware.NewAuthMiddleware(sessions, testCookieName)

	app := fiber.New()
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/logout", authMiddleware.RequireAuth, authHandler.Logout)
	api.Get("/session", authMiddleware.OptionalAuth, authHandler.Session)

	donorRoutes := api.Group("/donors", authMiddleware.RequireAuth)
	donorRoutes.Post("/", donorsHandler.Create)
	donorRoutes.Get("/", donorsHandler.List)
	donorRoutes.Get("/my", donorsHandler.My)
	donorRoutes.Put("/:id", donorsHandler.Update)

	requestRoutes := api.Group("/blood-requests", authMiddleware.RequireAuth)
	requestRoutes.Post("/", requestsHandler.Create)
	requestRoutes.Get("/", requestsHandler.List)
	requestRoutes.Get("/my", requestsHandler.ListMy)
	requestRoutes.Put("/:id", requestsHandler.UpdateStatus)

	api.Post("/contact-donor", authMiddleware.RequireAuth, messagesHandler.Contact)
	api.Get("/contact-messages/received", authMiddleware.RequireAuth, messagesHandler.Received)

	adminRoutes := api.Group("/admin", authMiddleware.RequireAuth, middleware.AdminOnly)
	adminRoutes.Get("/stats", adminHandler.Stats)
	adminRoutes.Get("/users", adminHandler.ListUsers)
	adminRoutes.Delete("/users/:id", adminHandler.DeleteUser)
	adminRoutes.Get("/donors", adminHandler.ListDonors)
	adminRoutes.Delete("/donors/:id", adminHandler.DeleteDonor)
	adminRoutes.Put("/blood-requests/:id", adminHandler.UpdateRequestStatus)
	adminRoutes.Delete("/blood-requests/:id", adminHandler.DeleteRequest)
	adminRoutes.Get("/messages", adminHandler.ListMessages)
	adminRoutes.Get("/audit-log", adminHandler.AuditLog)

	return &testEnv{app: app, db: db, sessions: sessions}
}

func createTestUser(t *testing.T, env *testEnv, username, password string, role models.UserRole) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Email:        username + "@test.local",
		FullName:     "Test User",
		BloodGroup:   "O+",
		Role:         role,
	}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token := env.sessions.Create(session.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		FullName: user.FullName,
	})

	return user, token
}

func sessionHeaders(token string) map[string]string {
	return map[string]string{"Cookie": testCookieName + "=" + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}
	return raw
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	raw := readBody(t, resp)

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func decodeJSONSlice(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()

	raw := readBody(t, resp)

	var payload []map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON array response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertErrorResponse(t *testing.T, statusCode int, body map[string]any, expectedStatus int, expectedMessage string) {
	t.Helper()

	if statusCode != expectedStatus {
		t.Fatalf("expected status code %d, got %d", expectedStatus, statusCode)
	}

	success, ok := body["success"].(bool)
	if !ok {
		t.Fatalf("expected success field to be boolean, got %T", body["success"])
	}
	if success {
		t.Fatalf("expected success=false, got %v", body["success"])
	}

	errMessage, ok := body["error"].(string)
	if !ok {
		t.Fatalf("expected error field to be string, got %T", body["error"])
	}
	if errMessage != expectedMessage {
		t.Fatalf("expected error message %q, got %q", expectedMessage, errMessage)
	}
}

func assertSuccessMessage(t *testing.T, resp *http.Response, expectedMessage string) {
	t.Helper()

	body := decodeJSONMap(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d (body=%v)", http.StatusOK, resp.StatusCode, body)
	}
	if success, _ := body["success"].(bool); !success {
		t.Fatalf("expected success=true, got %v", body)
	}
	if got, _ := body["message"].(string); got != expectedMessage {
		t.Fatalf("expected message %q, got %q", expectedMessage, got)
	}
}
