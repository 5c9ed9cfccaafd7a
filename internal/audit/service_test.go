package audit

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/library/internal/database/audit"
	"github.com/mrlokans/library/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	repo := auditRepo.NewRepository(db)
	svc := NewService(repo)

	return svc, db
}

func TestService_LogBorrow(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("successful borrow", func(t *testing.T) {
		record := &entities.BorrowRecord{ID: "rec-1", BookID: "book-1", ExpectedReturnDate: time.Now().Add(14 * 24 * time.Hour)}
		svc.LogBorrow(1, "book-1", "Alice", record, nil)
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("action = ?", "book_borrow").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
		assert.Equal(t, entities.AuditEventBorrow, event.EventType)
		assert.Equal(t, "book-1", event.EntityID)
		assert.Contains(t, event.Description, "Alice")
		assert.Contains(t, event.Metadata, "rec-1")
	})

	t.Run("rejected borrow", func(t *testing.T) {
		svc.LogBorrow(1, "book-2", "Bob", nil, errors.New("book is not available for borrowing"))
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("entity_id = ?", "book-2").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditStatusFailed, event.Status)
		assert.Contains(t, event.ErrorMsg, "not available")
		assert.Empty(t, event.Metadata)
	})
}

func TestService_LogReturn(t *testing.T) {
	svc, db := setupTestService(t)

	record := &entities.BorrowRecord{ID: "rec-9", BorrowerName: "Carol", Condition: entities.BookConditionGood}
	svc.LogReturn(2, "book-9", record, nil)
	svc.Wait()

	var event entities.AuditEvent
	err := db.Where("action = ?", "book_return").First(&event).Error
	require.NoError(t, err)
	assert.Equal(t, uint(2), event.UserID)
	assert.Contains(t, event.Description, "Carol")

	var metadata map[string]any
	require.NoError(t, json.Unmarshal([]byte(event.Metadata), &metadata))
	assert.Equal(t, "rec-9", metadata["borrow_record_id"])
	assert.Equal(t, "good", metadata["condition"])
}

func TestService_LogReconcile(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogReconcile(0, "", 12, 3, nil)
	svc.LogReconcile(0, "book-5", 1, 1, nil)
	svc.Wait()

	var all entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "reconcile_all").First(&all).Error)
	assert.Equal(t, "Checked 12 books, corrected 3", all.Description)
	assert.Contains(t, all.Metadata, `"corrected":3`)

	var one entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "reconcile_book").First(&one).Error)
	assert.Equal(t, "book-5", one.EntityID)
}

func TestService_LogQuantityAndDelete(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogQuantityChange(1, "book-3", 2, errors.New("cannot reduce quantity below borrowed amount"))
	svc.LogDelete(1, "book", "book-3", "Dune", nil)
	svc.Wait()

	var change entities.AuditEvent
	require.NoError(t, db.Where("event_type = ?", entities.AuditEventQuantityChange).First(&change).Error)
	assert.Equal(t, entities.AuditStatusFailed, change.Status)
	assert.Equal(t, "Set quantity of book book-3 to 2", change.Description)

	var del entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "book_delete").First(&del).Error)
	assert.Equal(t, "Deleted book: Dune", del.Description)
}

func TestService_LogAuth(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogAuth(1, "login", "192.168.1.1", true)
	svc.LogAuth(0, "login", "10.0.0.1", false)
	svc.Wait()

	var events []entities.AuditEvent
	require.NoError(t, db.Where("event_type = ?", entities.AuditEventAuth).Order("id").Find(&events).Error)
	require.Len(t, events, 2)

	statuses := map[string]entities.AuditStatus{}
	for _, e := range events {
		statuses[e.IPAddress] = e.Status
	}
	assert.Equal(t, entities.AuditStatusSuccess, statuses["192.168.1.1"])
	assert.Equal(t, entities.AuditStatusFailed, statuses["10.0.0.1"])
}

func TestService_GetEventsAndCleanup(t *testing.T) {
	svc, db := setupTestService(t)

	old := &entities.AuditEvent{
		EventType: entities.AuditEventBorrow,
		Action:    "book_borrow",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().Add(-100 * 24 * time.Hour),
	}
	require.NoError(t, db.Create(old).Error)
	svc.LogCatalog(1, "book_create", "book-1", "Created book 'Dune'", nil)
	svc.Wait()

	events, total, err := svc.GetEvents(auditRepo.EventFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "book_create", events[0].Action)

	deleted, err := svc.DeleteOldEvents(90 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, total, err = svc.GetEvents(auditRepo.EventFilter{EventType: entities.AuditEventBorrow}, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestService_NilIsNoop(t *testing.T) {
	var svc *Service
	assert.NotPanics(t, func() {
		svc.LogBorrow(1, "book-1", "Alice", nil, nil)
		svc.LogAuth(1, "login", "127.0.0.1", true)
		svc.Wait()
	})
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short string", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"needs truncation", "hello world", 8, "hello..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncate(tt.input, tt.maxLen))
		})
	}

	long := strings.Repeat("x", 600)
	assert.Len(t, truncate(long, 500), 500)

	thai := strings.Repeat("ก", 10)
	cut := truncate(thai, 8)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, "ก...", cut)
	assert.True(t, utf8.ValidString(truncate("สามก๊ก: "+strings.Repeat("ข", 300), 500)))
}

func TestReportWriter_SaveJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	w := NewReportWriter(dir)

	path, err := w.SaveJSON("reconcile", map[string]int{"checked": 4, "corrected": 1})
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "reconcile-"))
	assert.True(t, strings.HasSuffix(path, ".json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 1, decoded["corrected"])

	second, err := w.SaveJSON("reconcile", map[string]int{})
	require.NoError(t, err)
	assert.NotEqual(t, path, second)
}

func TestReportWriter_SaveYAML(t *testing.T) {
	w := NewReportWriter(t.TempDir())

	path, err := w.SaveYAML("reconcile", map[string]int{"checked": 2})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".yaml"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "checked: 2\n", string(data))
}
