package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required, every caller acts as admin
	AuthModeToken AuthMode = "token" // Bearer tokens issued by /api/auth/login (default)
)

type (
	Config struct {
		HTTP
		Global
		Database
		Audit
		Auth
		Tasks
		Reconcile
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path        string
		BusyTimeout time.Duration // How long a writer waits for the SQLite lock
		LogQueries  bool
	}
	Audit struct {
		Enabled       bool
		RetentionDays int // Days to keep audit events (default: 90)
	}
	Auth struct {
		Mode        AuthMode
		TokenExpiry time.Duration
		BcryptCost  int

		// Bootstrap accounts created on startup when the users table is empty
		AdminUsername string
		AdminEmail    string
		AdminPassword string
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration // Stuck tasks go back to the queue after this long
		CleanupInterval time.Duration
	}
	Reconcile struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
		OnStart  bool   // Run one reconciliation pass when the server starts
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_busy_timeout", "5s")
	v.SetDefault("database_log_queries", false)
	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention_days", 90)

	// Auth defaults
	v.SetDefault("auth_mode", "token")
	v.SetDefault("auth_token_expiry", "720h") // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)      // bcrypt cost factor
	v.SetDefault("auth_admin_username", "admin")
	v.SetDefault("auth_admin_email", "admin@library.local")
	v.SetDefault("auth_admin_password", "") // No bootstrap admin if empty

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Reconciliation defaults
	v.SetDefault("reconcile_enabled", true)
	v.SetDefault("reconcile_schedule", DefaultReconcileSchedule)
	v.SetDefault("reconcile_on_start", true)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:        v.GetString("DATABASE_PATH"),
			BusyTimeout: v.GetDuration("DATABASE_BUSY_TIMEOUT"),
			LogQueries:  v.GetBool("DATABASE_LOG_QUERIES"),
		},
		Audit: Audit{
			Enabled:       v.GetBool("AUDIT_ENABLED"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Auth: Auth{
			Mode:          AuthMode(v.GetString("AUTH_MODE")),
			TokenExpiry:   v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:    v.GetInt("AUTH_BCRYPT_COST"),
			AdminUsername: v.GetString("AUTH_ADMIN_USERNAME"),
			AdminEmail:    v.GetString("AUTH_ADMIN_EMAIL"),
			AdminPassword: v.GetString("AUTH_ADMIN_PASSWORD"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Reconcile: Reconcile{
			Enabled:  v.GetBool("RECONCILE_ENABLED"),
			Schedule: v.GetString("RECONCILE_SCHEDULE"),
			OnStart:  v.GetBool("RECONCILE_ON_START"),
		},
	}
}
