package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	auditRepo "github.com/mrlokans/library/internal/database/audit"
	"github.com/mrlokans/library/internal/database/books"
	"github.com/mrlokans/library/internal/database/settings"
	"github.com/mrlokans/library/internal/database/users"
	http_controllers "github.com/mrlokans/library/internal/http"
	"github.com/mrlokans/library/internal/lending"
	"github.com/mrlokans/library/internal/scheduler"
	"github.com/mrlokans/library/internal/settingsstore"
	"github.com/mrlokans/library/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Services holds the wired application components shared by the server and
// the command line tools.
type Services struct {
	DB         *database.Database
	Engine     *lending.Engine
	Reconciler *lending.Reconciler
	Catalog    *catalog.Service
	Audit      *audit.Service // nil when auditing is disabled
	Auth       *auth.Service
	Settings   *settingsstore.SettingsStore
}

// Build opens the database and wires the domain services on top of it.
func Build(cfg *config.Config) (*Services, error) {
	db, err := database.NewDatabaseWithOptions(cfg.Database.Path, database.Options{
		BusyTimeout: cfg.Database.BusyTimeout,
		LogQueries:  cfg.Database.LogQueries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	store := db.LendingStore()
	engine := lending.NewEngine(store)

	var auditService *audit.Service
	if cfg.Audit.Enabled {
		auditService = audit.NewService(auditRepo.NewRepository(db.DB))
	}

	return &Services{
		DB:         db,
		Engine:     engine,
		Reconciler: lending.NewReconciler(store),
		Catalog:    catalog.NewService(books.NewRepository(db.DB), engine),
		Audit:      auditService,
		Auth:       auth.NewService(users.NewRepository(db.DB), cfg.Auth),
		Settings:   settingsstore.New(settings.NewRepository(db.DB), cfg.Reconcile),
	}, nil
}

// Close flushes pending audit writes and closes the database.
func (s *Services) Close() error {
	s.Audit.Wait()
	return s.DB.Close()
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT. SIGKILL can't be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so it does not outlive the database.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Library v%s", version)

	svc, err := Build(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Initialize authentication
	if cfg.Auth.Mode == config.AuthModeNone {
		log.Printf("Authentication mode: none (every caller acts as administrator)")
	} else {
		log.Printf("Authentication mode: token")
		if _, err := svc.Auth.EnsureAdmin(); err != nil {
			log.Fatalf("Failed to bootstrap admin user: %v", err)
		}
		if count, err := users.NewRepository(svc.DB.DB).CountUsers(); err == nil && count == 0 {
			log.Printf("No users found. Set AUTH_ADMIN_PASSWORD or run 'library create-user' to create an administrator.")
		}
	}
	authMiddleware := auth.NewMiddleware(svc.Auth, cfg.Auth)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromAppConfig(cfg.Tasks, cfg.Database))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewReconcileInventoryQueue(svc.Reconciler, svc.Audit))
		if svc.Audit != nil {
			taskClient.Register(tasks.NewPruneAuditTrailQueue(svc.Audit))
		}

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		if svc.Audit != nil {
			if _, err := taskClient.Enqueue(tasks.PruneAuditTrailTask{KeepDays: cfg.Audit.RetentionDays}); err != nil {
				log.Printf("Failed to enqueue audit pruning: %v", err)
			}
		}
	}

	// Periodic reconciliation
	reconcileScheduler := scheduler.NewReconcileScheduler(svc.Reconciler, svc.Settings, svc.Audit)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	if err := reconcileScheduler.Start(schedulerCtx); err != nil {
		log.Printf("WARNING: reconciliation scheduler not started: %v", err)
	}
	if cfg.Reconcile.OnStart {
		go func() {
			if _, err := reconcileScheduler.RunNow(schedulerCtx); err != nil {
				log.Printf("[RECONCILE] Startup reconciliation failed: %v", err)
			}
		}()
	}

	routerCfg := http_controllers.RouterConfig{
		Database:           svc.DB,
		Catalog:            svc.Catalog,
		Lending:            svc.Engine,
		Reconciler:         svc.Reconciler,
		AuthService:        svc.Auth,
		AuthMiddleware:     authMiddleware,
		AuditService:       svc.Audit,
		ReconcileSettings:  svc.Settings,
		ReconcileScheduler: reconcileScheduler,
		Version:            version,
	}
	// A nil *tasks.Client must not end up inside the interface.
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		reconcileScheduler.Stop()
		schedulerCancel()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
