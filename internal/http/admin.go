package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/auth"
	auditRepo "github.com/mrlokans/library/internal/database/audit"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/tasks"
)

// AdminController serves inventory maintenance, audit and account endpoints.
type AdminController struct {
	reconciler   InventoryReconciler
	taskQueue    TaskQueue
	auditService *audit.Service
	authService  *auth.Service
	settings     ReconcileSettingsStore
	scheduler    Rescheduler
}

func NewAdminController(cfg RouterConfig) *AdminController {
	return &AdminController{
		reconciler:   cfg.Reconciler,
		taskQueue:    cfg.TaskQueue,
		auditService: cfg.AuditService,
		authService:  cfg.AuthService,
		settings:     cfg.ReconcileSettings,
		scheduler:    cfg.ReconcileScheduler,
	}
}

// ReconcileAll handles POST /api/admin/reconcile
// With ?async=true and a task queue configured the sweep is enqueued and
// 202 is returned with the task ID.
func (ac *AdminController) ReconcileAll(c *gin.Context) {
	userID := auth.GetUserID(c)
	if ac.wantsAsync(c) {
		ac.enqueue(c, tasks.ReconcileInventoryTask{RequestedBy: userID})
		return
	}

	result, err := ac.reconciler.ReconcileAll(c.Request.Context())
	if result != nil {
		ac.auditService.LogReconcile(userID, "", result.Checked, result.Corrected, err)
	}
	if err != nil {
		if result == nil {
			respondInternalError(c, err, "reconcile inventory")
			return
		}
		// Partial sweep: report what was done alongside the failures.
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "reconciliation finished with errors",
			"detail": err.Error(),
			"result": result,
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReconcileBook handles POST /api/admin/books/:id/reconcile
func (ac *AdminController) ReconcileBook(c *gin.Context) {
	userID := auth.GetUserID(c)
	bookID := c.Param("id")
	if ac.wantsAsync(c) {
		ac.enqueue(c, tasks.ReconcileInventoryTask{BookID: bookID, RequestedBy: userID})
		return
	}

	book, correction, err := ac.reconciler.ReconcileBook(c.Request.Context(), bookID)
	if err != nil {
		respondServiceError(c, err, "reconcile book")
		return
	}
	corrected := 0
	if correction != nil {
		corrected = 1
	}
	ac.auditService.LogReconcile(userID, bookID, 1, corrected, nil)
	c.JSON(http.StatusOK, gin.H{
		"book":       book,
		"correction": correction,
	})
}

func (ac *AdminController) wantsAsync(c *gin.Context) bool {
	return ac.taskQueue != nil && c.Query("async") == "true"
}

func (ac *AdminController) enqueue(c *gin.Context, task backlite.Task) {
	id, err := ac.taskQueue.Enqueue(task)
	if err != nil {
		respondInternalError(c, err, "enqueue task")
		return
	}
	respondAccepted(c, "task enqueued", gin.H{
		"taskId": id,
		"type":   task.Config().Name,
	})
}

// TaskStatus handles GET /api/admin/tasks/:id
func (ac *AdminController) TaskStatus(c *gin.Context) {
	if ac.taskQueue == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "task queue disabled", Code: "not_found"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	taskID := c.Param("id")
	status, err := ac.taskQueue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// AuditEvents handles GET /api/admin/audit
func (ac *AdminController) AuditEvents(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 25)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}

	filter := auditRepo.EventFilter{
		EventType: entities.AuditEventType(c.Query("type")),
		EntityID:  c.Query("entityId"),
		UserID:    uint(parseIntQuery(c, "userId", 0)),
	}

	events, total, err := ac.auditService.GetEvents(filter, limit, (page-1)*limit)
	if err != nil {
		respondInternalError(c, err, "audit events")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"events":      events,
		"page":        page,
		"limit":       limit,
		"totalPages":  totalPages,
		"totalEvents": total,
	})
}

type ReconcileSettingsRequest struct {
	Enabled  *bool   `json:"enabled"`
	Schedule *string `json:"schedule"`
}

// GetReconcileSettings handles GET /api/admin/reconcile/settings
func (ac *AdminController) GetReconcileSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"config": ac.settings.GetReconcileConfigInfo(),
		"status": ac.settings.GetReconcileStatus(),
	})
}

// UpdateReconcileSettings handles PUT /api/admin/reconcile/settings
func (ac *AdminController) UpdateReconcileSettings(c *gin.Context) {
	var req ReconcileSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if req.Schedule != nil {
		if err := ac.settings.SetReconcileSchedule(*req.Schedule); err != nil {
			respondBadRequest(c, "invalid cron schedule: "+err.Error())
			return
		}
	}
	if req.Enabled != nil {
		if err := ac.settings.SetReconcileEnabled(*req.Enabled); err != nil {
			respondInternalError(c, err, "save reconcile settings")
			return
		}
	}

	if ac.scheduler != nil {
		if err := ac.scheduler.Reschedule(context.Background()); err != nil {
			respondInternalError(c, err, "reschedule reconciliation")
			return
		}
	}
	ac.GetReconcileSettings(c)
}

type CreateUserRequest struct {
	Username string            `json:"username" binding:"required"`
	Email    string            `json:"email" binding:"required,email"`
	Password string            `json:"password" binding:"required"`
	Role     entities.UserRole `json:"role" binding:"required,oneof=admin user"`
}

// CreateUser handles POST /api/admin/users
func (ac *AdminController) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := ac.authService.CreateUser(req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "conflict"})
		case errors.Is(err, auth.ErrUsernameInvalid), errors.Is(err, auth.ErrEmailInvalid),
			errors.Is(err, auth.ErrInvalidRole), errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrPasswordTooLong):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "create user")
		}
		return
	}
	ac.auditService.LogAuth(auth.GetUserID(c), "user_create", c.ClientIP(), true)
	respondCreated(c, user)
}
