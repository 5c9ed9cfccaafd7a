package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./library.db"
)

// DefaultReconcileSchedule runs the inventory reconciliation nightly at 03:00.
const DefaultReconcileSchedule = "0 3 * * *"
