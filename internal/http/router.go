// Package http exposes the library over a JSON API built on gin.
package http

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if err := RegisterValidators(); err != nil {
		log.Printf("Failed to register request validators: %v", err)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	authMiddleware := cfg.AuthMiddleware
	if authMiddleware == nil {
		authMiddleware = auth.NewMiddleware(cfg.AuthService, config.Auth{Mode: config.AuthModeNone})
	}
	router.Use(authMiddleware.Handler())

	anyUser := authMiddleware.RequireRole(entities.UserRoleUser, entities.UserRoleAdmin)
	adminOnly := authMiddleware.RequireRole(entities.UserRoleAdmin)

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	if cfg.AuthService != nil {
		authController := NewAuthController(cfg.AuthService, cfg.AuditService)
		api.POST("/auth/login", authController.Login)
		api.GET("/auth/me", anyUser, authController.Me)
		api.POST("/auth/logout", anyUser, authController.Logout)
	}

	books := NewBooksController(cfg.Catalog, cfg.Lending, cfg.AuditService)
	lendingController := NewLendingController(cfg.Lending, cfg.AuditService)

	// Catalog and lending for any signed-in user
	user := api.Group("", anyUser)
	user.GET("/books", books.SearchBooks)
	user.GET("/books/:id", books.GetBook)
	user.POST("/books/:id/borrow", lendingController.Borrow)
	user.POST("/books/:id/return", lendingController.Return)

	// Catalog maintenance and loan reports
	admin := api.Group("", adminOnly)
	admin.POST("/books", books.CreateBook)
	admin.PATCH("/books/:id", books.UpdateBook)
	admin.PUT("/books/:id/quantity", books.SetQuantity)
	admin.PUT("/books/:id/cover", books.SetCover)
	admin.DELETE("/books/:id", books.DeleteBook)
	admin.GET("/books/:id/borrow-history", lendingController.BorrowHistory)
	admin.GET("/borrows/active", lendingController.ActiveBorrows)
	admin.GET("/borrows/returned", lendingController.ReturnedBorrows)
	admin.GET("/borrows/overdue", lendingController.OverdueBorrows)

	adminController := NewAdminController(cfg)
	if cfg.Reconciler != nil {
		admin.POST("/admin/reconcile", adminController.ReconcileAll)
		admin.POST("/admin/books/:id/reconcile", adminController.ReconcileBook)
	}
	if cfg.TaskQueue != nil {
		admin.GET("/admin/tasks/:id", adminController.TaskStatus)
	}
	if cfg.ReconcileSettings != nil {
		admin.GET("/admin/reconcile/settings", adminController.GetReconcileSettings)
		admin.PUT("/admin/reconcile/settings", adminController.UpdateReconcileSettings)
	}
	if cfg.AuditService != nil {
		admin.GET("/admin/audit", adminController.AuditEvents)
	}
	if cfg.AuthService != nil {
		admin.POST("/admin/users", adminController.CreateUser)
	}

	return router
}
