package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wordly/internal/config"
	"github.com/wordly/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouterTest(t *testing.T) (*gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	cfg := config.AppConfig{
		SessionSecret: "test-secret",
		UploadDir:     t.TempDir(),
		UploadURLPath: "/static/uploads",
	}

	return SetupRouter(gdb, cfg), func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

func TestAdminRoutesRequireLogin(t *testing.T) {
	r, cleanup := setupRouterTest(t)
	defer cleanup()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/admin/api/posts"},
		{http.MethodPost, "/admin/api/posts"},
		{http.MethodDelete, "/admin/api/posts/1"},
		{http.MethodPost, "/admin/api/categories"},
		{http.MethodDelete, "/admin/api/categories/1"},
		{http.MethodGet, "/admin/api/stats"},
	}

	for _, route := range routes {
		req := httptest.NewRequest(route.method, route.path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected status 401, got %d", route.method, route.path, rr.Code)
		}
	}
}

func TestPublicRoutesOpen(t *testing.T) {
	r, cleanup := setupRouterTest(t)
	defer cleanup()

	paths := []string{"/ping", "/api/posts", "/api/categories", "/api/stats"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s: expected status 200, got %d", path, rr.Code)
		}
	}
}

func TestSessionCookieWorksOverPlainHTTP(t *testing.T) {
	r, cleanup := setupRouterTest(t)
	defer cleanup()

	creds := `{"username":"author","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(creds))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("signup failed: %d: %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(creds))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed: %d: %s", rr.Code, rr.Body.String())
	}

	var session *http.Cookie
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == "wordly_session" {
			session = cookie
		}
	}
	if session == nil {
		t.Fatalf("login did not set a session cookie")
	}

	// Secure 标记或 SameSite=None 会让浏览器在纯 HTTP 下拒绝回传
	if session.Secure {
		t.Fatalf("session cookie must not be Secure by default")
	}
	if session.SameSite == http.SameSiteNoneMode {
		t.Fatalf("session cookie must not use SameSite=None")
	}
	if !session.HttpOnly {
		t.Fatalf("session cookie should be HttpOnly")
	}
	if session.Path != "/" {
		t.Fatalf("session cookie path should be /, got %q", session.Path)
	}

	// 带着 cookie 的后台请求要能通过认证
	req = httptest.NewRequest(http.MethodGet, "/admin/api/posts", nil)
	req.AddCookie(&http.Cookie{Name: session.Name, Value: session.Value})
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("authenticated request failed: %d: %s", rr.Code, rr.Body.String())
	}
}

func TestSetupRouterServesUploads(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router-uploads-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	defer func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}()
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	uploadDir := t.TempDir()
	fileContent := []byte("hello uploads")
	if err := os.WriteFile(filepath.Join(uploadDir, "example.txt"), fileContent, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	r := SetupRouter(gdb, config.AppConfig{
		SessionSecret: "test-secret",
		UploadDir:     uploadDir,
		UploadURLPath: "/static/uploads",
	})

	req := httptest.NewRequest(http.MethodGet, "/static/uploads/example.txt", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != string(fileContent) {
		t.Fatalf("unexpected body, got %q", rr.Body.String())
	}
}
