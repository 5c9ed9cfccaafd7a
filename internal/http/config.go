package http

import (
	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/database"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
// Optional dependencies may be nil; their routes are not registered.
type RouterConfig struct {
	// Core dependencies
	Database   *database.Database
	Catalog    CatalogService
	Lending    LendingService
	Reconciler InventoryReconciler

	// Authentication
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware

	// Audit trail (optional)
	AuditService *audit.Service

	// Task queue (optional). Without it reconciliation always runs inline.
	TaskQueue TaskQueue

	// Reconciliation schedule (optional)
	ReconcileSettings  ReconcileSettingsStore
	ReconcileScheduler Rescheduler

	// Application info
	Version string
}
