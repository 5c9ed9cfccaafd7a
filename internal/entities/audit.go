package entities

import "time"

type AuditEventType string

const (
	AuditEventBorrow         AuditEventType = "borrow"
	AuditEventReturn         AuditEventType = "return"
	AuditEventQuantityChange AuditEventType = "quantity_change"
	AuditEventDelete         AuditEventType = "delete"
	AuditEventCatalog        AuditEventType = "catalog"
	AuditEventReconcile      AuditEventType = "reconcile"
	AuditEventAuth           AuditEventType = "auth"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent is one entry of the append-only trail of lending, catalog,
// reconciliation and sign-in activity. UserID 0 is the system or an
// unauthenticated caller.
type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index" json:"userId"`
	EventType   AuditEventType `gorm:"index;size:50" json:"eventType"`
	Action      string         `gorm:"size:100" json:"action"` // book_borrow, reconcile_all, login_failed, ...
	Description string         `gorm:"size:500" json:"description"`
	EntityType  string         `gorm:"size:50" json:"entityType,omitempty"`
	EntityID    string         `gorm:"index;size:36" json:"entityId,omitempty"` // book UUID
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"`     // JSON object
	IPAddress   string         `gorm:"size:45" json:"ipAddress,omitempty"`
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"errorMsg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

func (e *AuditEvent) Failed() bool {
	return e.Status == AuditStatusFailed
}
