package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/library/internal/database/audit"
	"github.com/mrlokans/library/internal/entities"
)

// Service provides high-level audit logging functionality. The Log* helpers
// and Wait may be called on a nil *Service, which records nothing.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if s == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every event queued with LogAsync has been written.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.pending.Wait()
}

// LogBorrow records a borrow attempt.
func (s *Service) LogBorrow(userID uint, bookID, borrower string, record *entities.BorrowRecord, err error) {
	event := newEvent(userID, entities.AuditEventBorrow, "book_borrow", "book", bookID, err)
	event.Description = fmt.Sprintf("Borrow of book %s for %s", bookID, borrower)
	if record != nil {
		event.Metadata = marshalMetadata(map[string]any{
			"borrow_record_id":     record.ID,
			"expected_return_date": record.ExpectedReturnDate,
		})
	}
	s.LogAsync(event)
}

// LogReturn records a return attempt.
func (s *Service) LogReturn(userID uint, bookID string, record *entities.BorrowRecord, err error) {
	event := newEvent(userID, entities.AuditEventReturn, "book_return", "book", bookID, err)
	event.Description = "Return of book " + bookID
	if record != nil {
		event.Description = fmt.Sprintf("Return of book %s by %s", bookID, record.BorrowerName)
		event.Metadata = marshalMetadata(map[string]any{
			"borrow_record_id": record.ID,
			"condition":        record.Condition,
		})
	}
	s.LogAsync(event)
}

// LogQuantityChange records a change of owned copies.
func (s *Service) LogQuantityChange(userID uint, bookID string, newQuantity int, err error) {
	event := newEvent(userID, entities.AuditEventQuantityChange, "book_quantity_change", "book", bookID, err)
	event.Description = fmt.Sprintf("Set quantity of book %s to %d", bookID, newQuantity)
	s.LogAsync(event)
}

// LogDelete records a deletion.
func (s *Service) LogDelete(userID uint, entityType, entityID, entityName string, err error) {
	event := newEvent(userID, entities.AuditEventDelete, entityType+"_delete", entityType, entityID, err)
	event.Description = "Deleted " + entityType + ": " + entityName
	s.LogAsync(event)
}

// LogCatalog records a catalog change such as creating or editing a book.
func (s *Service) LogCatalog(userID uint, action, bookID, description string, err error) {
	event := newEvent(userID, entities.AuditEventCatalog, action, "book", bookID, err)
	event.Description = description
	s.LogAsync(event)
}

// LogReconcile records a reconciliation run. bookID is empty for a full sweep.
func (s *Service) LogReconcile(userID uint, bookID string, checked, corrected int, err error) {
	action := "reconcile_all"
	if bookID != "" {
		action = "reconcile_book"
	}
	event := newEvent(userID, entities.AuditEventReconcile, action, "book", bookID, err)
	event.Description = fmt.Sprintf("Checked %d books, corrected %d", checked, corrected)
	event.Metadata = marshalMetadata(map[string]any{
		"checked":   checked,
		"corrected": corrected,
	})
	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action, ipAddr string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		Status:    entities.AuditStatusSuccess,
	}
	if !success {
		event.Status = entities.AuditStatusFailed
	}
	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(filter audit.EventFilter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(filter, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func newEvent(userID uint, eventType entities.AuditEventType, action, entityType, entityID string, err error) *entities.AuditEvent {
	event := &entities.AuditEvent{
		UserID:     userID,
		EventType:  eventType,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Status:     entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	return event
}

func marshalMetadata(metadata map[string]any) string {
	b, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(b)
}

// truncate shortens s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
