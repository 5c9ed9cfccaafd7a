package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/entities"
)

type AuthController struct {
	authService  *auth.Service
	auditService *audit.Service
}

func NewAuthController(authService *auth.Service, auditService *audit.Service) *AuthController {
	return &AuthController{
		authService:  authService,
		auditService: auditService,
	}
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string         `json:"token"`
	User  *entities.User `json:"user"`
}

// Login handles POST /api/auth/login
// Issues a new bearer token; earlier tokens of the same user stop working.
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	token, user, err := ac.authService.Login(req.Login, req.Password)
	if err != nil {
		ac.auditService.LogAuth(0, "login_failed", c.ClientIP(), false)
		if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrInvalidPassword) || errors.Is(err, auth.ErrUserInactive) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials", Code: "unauthorized"})
			return
		}
		respondInternalError(c, err, "login")
		return
	}

	ac.auditService.LogAuth(user.ID, "login", c.ClientIP(), true)
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: user})
}

// Me handles GET /api/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == auth.DefaultUserID {
		c.JSON(http.StatusOK, gin.H{"role": auth.GetUserRole(c)})
		return
	}
	user, err := ac.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found", Code: "not_found"})
			return
		}
		respondInternalError(c, err, "current user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout handles POST /api/auth/logout by revoking the caller's token.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID != auth.DefaultUserID {
		if err := ac.authService.RevokeToken(userID); err != nil {
			respondInternalError(c, err, "logout")
			return
		}
		ac.auditService.LogAuth(userID, "logout", c.ClientIP(), true)
	}
	respondSuccess(c, "logged out")
}
