package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"caixa/internal/docstore"
	"caixa/internal/handlers"
	"caixa/internal/logger"
	"caixa/internal/middleware"
	"caixa/internal/models"
	"caixa/internal/services"
	"caixa/internal/testutil"
	"caixa/internal/validator"
)

const testFetchLimit = 5000

// testApp holds the full application stack for integration tests.
type testApp struct {
	Store  *docstore.GormStore
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedStore creates a document store backed by an isolated in-memory
// SQLite database for a single test.
func setupIsolatedStore(t *testing.T) *docstore.GormStore {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	store := docstore.NewGormStore(db, docstore.Options{})
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return store
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	store := setupIsolatedStore(t)

	// Services
	authService := services.NewAuthService(store, "integration-test-secret", time.Hour)
	profileService := services.NewProfileService(store)
	entryService := services.NewEntryService(store, testFetchLimit)
	dashboardService := services.NewDashboardService(entryService, profileService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(profileService)
	entryHandler := handlers.NewEntryHandler(entryService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.Auth(authService))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", profileHandler.GetProfile)

	categories := protected.Group("/categories")
	categories.GET("", profileHandler.GetProfile)
	categories.POST("", profileHandler.AddCategory)
	categories.DELETE("", profileHandler.RemoveCategory)

	entries := protected.Group("/entries")
	entries.PUT("", entryHandler.Upsert)
	entries.PUT("/batch", entryHandler.UpsertBatch)
	entries.GET("", entryHandler.List)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/monthly", dashboardHandler.Monthly)
	dashboard.GET("/annual", dashboardHandler.Annual)
	dashboard.GET("/breakdown", dashboardHandler.Breakdown)
	dashboard.GET("/expenses", dashboardHandler.Expenses)

	return &testApp{Store: store, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// errorCode digs the machine-readable code out of an error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got: %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// loginUser puts the identifier on the allow-list and signs in, returning the
// bearer token.
func (app *testApp) loginUser(t *testing.T, email string) string {
	t.Helper()
	testutil.Allow(t, app.Store, email)

	body := fmt.Sprintf(`{"identifier":%q}`, email)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	token, _ := result["token"].(string)
	if token == "" {
		t.Fatalf("expected a session token, got: %s", rec.Body.String())
	}
	return token
}

// upsertEntry writes one amount through the API.
func (app *testApp) upsertEntry(t *testing.T, token, period, category string, kind models.Kind, amount string) {
	t.Helper()
	body := fmt.Sprintf(`{"period":%q,"category":%q,"kind":%q,"amount":%s}`, period, category, kind, amount)
	rec := app.request("PUT", "/api/v1/entries", body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert failed: %d %s", rec.Code, rec.Body.String())
	}
}
