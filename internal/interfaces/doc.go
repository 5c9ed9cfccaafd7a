// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - lending.Store / lending.Tx: unit of work over both stores (internal/lending/store.go)
//   - lending.BookStore: book lookups and compare-and-update counter writes
//   - lending.BorrowStore: borrow record lookups, creation and closing
//   - catalog.Repository: book details and search (internal/catalog/service.go)
//   - auth.UserRepository: accounts and token hashes (internal/auth/service.go)
//
// ## Service Interfaces
//
// The HTTP layer depends on narrow interfaces declared in internal/http/services.go:
//
//   - CatalogService, LendingService, InventoryReconciler
//   - TaskQueue: enqueue background work and read task status
//   - ReconcileSettingsStore, Rescheduler: runtime reconciliation schedule
//
// ## Background Work Interfaces
//
//   - tasks.InventoryReconciler, tasks.ReconcileRecorder, tasks.AuditPruner
//   - scheduler.Reconciler, scheduler.ReconcileSettings
//
// # Adding a New Store Backend
//
// The lending engine only sees lending.Store. To run it on another database:
//
//  1. Implement BookStore and BorrowStore. Counter writes must carry their
//     precondition in the WHERE clause and report whether a row changed:
//
//     func (r *Repository) TakeCopy(ctx context.Context, id string) (bool, error)
//
//  2. Implement Store.Atomic so both stores share one transaction.
//
//  3. Add compile-time checks:
//
//     var _ lending.Store = (*PostgresStore)(nil)
//
// # Adding a New Background Task
//
//  1. Define the task and processor in internal/tasks/:
//
//     type ExportLoansTask struct{ Since time.Time }
//
//     func (t ExportLoansTask) Config() backlite.QueueConfig
//
//     func NewExportLoansQueue(...) backlite.Queue
//
//  2. Register the queue in entrypoint.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
