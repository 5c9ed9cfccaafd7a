package tasks

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// DefaultAuditKeepDays is used when a prune task does not say how long to
// keep events.
const DefaultAuditKeepDays = 90

// AuditPruner deletes audit events older than a retention period.
type AuditPruner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// PruneAuditTrailTask drops audit events older than KeepDays.
type PruneAuditTrailTask struct {
	KeepDays int `json:"keep_days"`
}

// Retention is how far back events are kept.
func (t PruneAuditTrailTask) Retention() time.Duration {
	days := t.KeepDays
	if days <= 0 {
		days = DefaultAuditKeepDays
	}
	return time.Duration(days) * 24 * time.Hour
}

func (t PruneAuditTrailTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_audit_trail",
		MaxAttempts: 2,
		Backoff:     10 * time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 7 * 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PruneAuditTrailProcessor creates a processor for PruneAuditTrailTask.
func PruneAuditTrailProcessor(pruner AuditPruner) backlite.QueueProcessor[PruneAuditTrailTask] {
	return func(ctx context.Context, task PruneAuditTrailTask) error {
		if pruner == nil {
			return errors.New("audit pruner not configured")
		}

		retention := task.Retention()
		deleted, err := pruner.DeleteOldEvents(retention)
		if err != nil {
			return err
		}
		log.Printf("[TASK] Pruned %d audit events older than %v", deleted, retention)
		return nil
	}
}

// NewPruneAuditTrailQueue creates a backlite queue for audit pruning.
func NewPruneAuditTrailQueue(pruner AuditPruner) backlite.Queue {
	return backlite.NewQueue(PruneAuditTrailProcessor(pruner))
}
