package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/cli"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/database/books"
	"github.com/mrlokans/library/internal/database/borrows"
	"github.com/mrlokans/library/internal/database/users"
	"github.com/mrlokans/library/internal/http"
	"github.com/mrlokans/library/internal/lending"
	"github.com/mrlokans/library/internal/scheduler"
	"github.com/mrlokans/library/internal/settingsstore"
	"github.com/mrlokans/library/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ lending.Store = (*database.LendingStore)(nil)
var _ lending.Tx = (*database.LendingStore)(nil)
var _ lending.BookStore = (*books.Repository)(nil)
var _ lending.BorrowStore = (*borrows.Repository)(nil)

var _ catalog.Repository = (*books.Repository)(nil)

var _ auth.UserRepository = (*users.Repository)(nil)

// =============================================================================
// Domain Services
// =============================================================================

var _ catalog.BookUpdater = (*lending.Engine)(nil)

var _ http.CatalogService = (*catalog.Service)(nil)
var _ http.LendingService = (*lending.Engine)(nil)
var _ http.InventoryReconciler = (*lending.Reconciler)(nil)
var _ http.ReconcileSettingsStore = (*settingsstore.SettingsStore)(nil)
var _ http.Rescheduler = (*scheduler.ReconcileScheduler)(nil)

var _ auth.TokenValidator = (*auth.Service)(nil)

var _ cli.BookCreator = (*catalog.Service)(nil)
var _ cli.Lender = (*lending.Engine)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)

var _ tasks.InventoryReconciler = (*lending.Reconciler)(nil)
var _ tasks.ReconcileRecorder = (*audit.Service)(nil)
var _ tasks.AuditPruner = (*audit.Service)(nil)

var _ scheduler.Reconciler = (*lending.Reconciler)(nil)
var _ scheduler.ReconcileRecorder = (*audit.Service)(nil)
var _ scheduler.ReconcileSettings = (*settingsstore.SettingsStore)(nil)
