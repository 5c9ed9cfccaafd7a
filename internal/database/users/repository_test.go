package users

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	dbPath := filepath.Join(t.TempDir(), "users.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func createUser(t *testing.T, repo *Repository, username string) *entities.User {
	t.Helper()
	user := &entities.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         entities.UserRoleUser,
	}
	require.NoError(t, repo.CreateUser(user))
	return user
}

func TestRepository_CreateUser(t *testing.T) {
	repo := setupTestDB(t)

	user := createUser(t, repo, "testuser")

	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)

	count, err := repo.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_CreateUser_Duplicate(t *testing.T) {
	repo := setupTestDB(t)
	createUser(t, repo, "testuser")

	err := repo.CreateUser(&entities.User{Username: "testuser", Email: "other@example.com"})
	assert.Error(t, err)
}

func TestRepository_GetUserByLogin(t *testing.T) {
	repo := setupTestDB(t)
	created := createUser(t, repo, "testuser")

	user, err := repo.GetUserByLogin("testuser")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	user, err = repo.GetUserByLogin("testuser@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = repo.GetUserByLogin("nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_GetUserByID(t *testing.T) {
	repo := setupTestDB(t)
	created := createUser(t, repo, "testuser")

	user, err := repo.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)

	_, err = repo.GetUserByID(999)
	assert.Error(t, err)
}

func TestRepository_TokenHash(t *testing.T) {
	repo := setupTestDB(t)
	created := createUser(t, repo, "testuser")

	now := time.Now()
	ok, err := repo.SetTokenHash(created.ID, "abc123", &now)
	require.NoError(t, err)
	assert.True(t, ok)

	user, err := repo.GetUserByTokenHash("abc123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	require.NotNil(t, user.TokenCreatedAt)

	ok, err = repo.SetTokenHash(created.ID, "", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.GetUserByTokenHash("abc123")
	assert.Error(t, err)
	_, err = repo.GetUserByTokenHash("")
	assert.Error(t, err, "an empty hash never matches a revoked user")

	ok, err = repo.SetTokenHash(999, "x", &now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_UserExists(t *testing.T) {
	repo := setupTestDB(t)
	createUser(t, repo, "testuser")

	exists, err := repo.UserExists("testuser", "fresh@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.UserExists("fresh", "fresh@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_TouchLastLogin(t *testing.T) {
	repo := setupTestDB(t)
	created := createUser(t, repo, "testuser")

	require.NoError(t, repo.TouchLastLogin(created.ID, time.Now()))

	user, err := repo.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.NotNil(t, user.LastLoginAt)
}
