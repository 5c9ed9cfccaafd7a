// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, DSN and migrations
//	├── store.go         # LendingStore: books + borrows in one transaction
//	├── books/           # Book details, search and counter updates
//	├── borrows/         # Borrow record lifecycle and listings
//	├── audit/           # Audit event persistence
//	├── settings/        # Runtime settings
//	└── users/           # User accounts and token hashes
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./library.db")
//
//	booksRepo := books.NewRepository(db.DB)
//	book, found, err := booksRepo.FindBook(ctx, id)
//
// The lending engine does not use the repositories directly. It receives
// db.LendingStore(), whose Atomic method hands both repositories bound to a
// single gorm transaction to the caller.
//
// # Interface Implementations
//
//   - LendingStore: implements lending.Store
//   - books.Repository: implements lending.BookStore and catalog.Repository
//   - borrows.Repository: implements lending.BorrowStore
//   - users.Repository: implements auth.UserRepository
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check in internal/interfaces/checks.go
package database
