package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupMiddleware(t *testing.T, authMode config.AuthMode) (*Middleware, *Service) {
	t.Helper()
	cfg := config.Auth{Mode: authMode}
	service, _ := setupService(t, cfg)
	return NewMiddleware(service, cfg), service
}

func newRouter(m *Middleware, path string, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(m.Handler())
	handlers := append(extra, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": GetUserID(c),
			"role":    GetUserRole(c),
		})
	})
	router.GET(path, handlers...)
	return router
}

func doRequest(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_NoAuthMode(t *testing.T) {
	middleware, _ := setupMiddleware(t, config.AuthModeNone)
	router := newRouter(middleware, "/api/admin/reconcile", middleware.RequireRole(entities.UserRoleAdmin))

	rr := doRequest(router, "/api/admin/reconcile", "")
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestMiddleware_PublicPaths(t *testing.T) {
	middleware, _ := setupMiddleware(t, config.AuthModeToken)

	for _, path := range []string{"/health", "/ping", "/api/auth/login"} {
		t.Run(path, func(t *testing.T) {
			rr := doRequest(newRouter(middleware, path), path, "")
			if rr.Code != http.StatusOK {
				t.Errorf("Expected status 200 for public path %s, got %d", path, rr.Code)
			}
		})
	}
}

func TestMiddleware_MissingToken(t *testing.T) {
	middleware, _ := setupMiddleware(t, config.AuthModeToken)

	rr := doRequest(newRouter(middleware, "/api/books"), "/api/books", "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rr.Code)
	}
}

func TestMiddleware_InvalidToken(t *testing.T) {
	middleware, _ := setupMiddleware(t, config.AuthModeToken)

	rr := doRequest(newRouter(middleware, "/api/books"), "/api/books", "lib_nope")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rr.Code)
	}
}

func TestMiddleware_RoleChecks(t *testing.T) {
	middleware, service := setupMiddleware(t, config.AuthModeToken)

	if _, err := service.CreateUser("admin", "admin@example.com", "password12345", entities.UserRoleAdmin); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	if _, err := service.CreateUser("reader", "reader@example.com", "password12345", entities.UserRoleUser); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	adminToken, _, err := service.Login("admin", "password12345")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	userToken, _, err := service.Login("reader", "password12345")
	if err != nil {
		t.Fatalf("user login: %v", err)
	}

	adminOnly := newRouter(middleware, "/api/borrows/active", middleware.RequireRole(entities.UserRoleAdmin))
	anyone := newRouter(middleware, "/api/books", middleware.RequireRole(entities.UserRoleAdmin, entities.UserRoleUser))

	tests := []struct {
		name   string
		router *gin.Engine
		path   string
		token  string
		want   int
	}{
		{"admin on admin route", adminOnly, "/api/borrows/active", adminToken, http.StatusOK},
		{"user on admin route", adminOnly, "/api/borrows/active", userToken, http.StatusForbidden},
		{"user on user route", anyone, "/api/books", userToken, http.StatusOK},
		{"admin on user route", anyone, "/api/books", adminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(tt.router, tt.path, tt.token)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
