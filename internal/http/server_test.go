package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	auditRepo "github.com/mrlokans/library/internal/database/audit"
	"github.com/mrlokans/library/internal/database/books"
	"github.com/mrlokans/library/internal/database/users"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/lending"
)

type testServer struct {
	router  *gin.Engine
	db      *database.Database
	engine  *lending.Engine
	catalog *catalog.Service
	audit   *audit.Service
	auth    *auth.Service
}

// newTestServer wires the real services against a temporary database.
// mutate may adjust the router configuration before the router is built.
func newTestServer(t *testing.T, mode config.AuthMode, mutate func(*RouterConfig)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "http.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := db.LendingStore()
	engine := lending.NewEngine(store)
	catalogService := catalog.NewService(books.NewRepository(db.DB), engine)
	auditService := audit.NewService(auditRepo.NewRepository(db.DB))
	t.Cleanup(auditService.Wait)

	authCfg := config.Auth{Mode: mode, BcryptCost: bcrypt.MinCost, TokenExpiry: time.Hour}
	authService := auth.NewService(users.NewRepository(db.DB), authCfg)

	cfg := RouterConfig{
		Database:       db,
		Catalog:        catalogService,
		Lending:        engine,
		Reconciler:     lending.NewReconciler(store),
		AuthService:    authService,
		AuthMiddleware: auth.NewMiddleware(authService, authCfg),
		AuditService:   auditService,
		Version:        "test",
	}
	if mutate != nil {
		mutate(&cfg)
	}

	return &testServer{
		router:  NewRouter(cfg),
		db:      db,
		engine:  engine,
		catalog: catalogService,
		audit:   auditService,
		auth:    authService,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

var bookSeq int

func (s *testServer) createBook(t *testing.T, quantity int) *entities.Book {
	t.Helper()
	bookSeq++
	book, err := s.catalog.CreateBook(context.Background(), catalog.BookInput{
		Title:    fmt.Sprintf("Book %d", bookSeq),
		Author:   "Author",
		ISBN:     fmt.Sprintf("978-1-00-%06d-0", bookSeq),
		Year:     2010,
		Quantity: quantity,
	})
	require.NoError(t, err)
	return book
}

func (s *testServer) userToken(t *testing.T, username string, role entities.UserRole) string {
	t.Helper()
	password := "correct-horse-battery"
	_, err := s.auth.CreateUser(username, username+"@example.com", password, role)
	require.NoError(t, err)
	token, _, err := s.auth.Login(username, password)
	require.NoError(t, err)
	return token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}
