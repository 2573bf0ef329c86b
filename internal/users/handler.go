package users

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"retail360-backend/internal/shared/server/middleware"
	"retail360-backend/internal/shared/server/respond"
)

// UploadRecord is the slice of the upload ledger shown on the profile,
// declared here so users does not import uploads.
type UploadRecord struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"date"`
}

// UploadLister exposes the account's upload history for the profile view.
type UploadLister interface {
	ListForUser(ctx context.Context, userID string) ([]UploadRecord, error)
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc     *Service
	Uploads UploadLister
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, uploads UploadLister) *Handler {
	return &Handler{Svc: svc, Uploads: uploads}
}

// RegisterPublicRoutes attaches the unauthenticated auth routes.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.register)
	rg.POST("/login", h.login)
}

// RegisterRoutes attaches the token-guarded account routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.profile)
	rg.PUT("/change-password", h.changePassword)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type authResponse struct {
	Token string  `json:"token"`
	User  Summary `json:"user"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Msg(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, user, err := h.Svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			respond.Msg(c, http.StatusBadRequest, "User already exists")
			return
		}
		respond.Msg(c, http.StatusInternalServerError, "Server error")
		return
	}

	respond.JSON(c, http.StatusCreated, authResponse{Token: token, User: user.Summary()})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Msg(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, user, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Msg(c, http.StatusBadRequest, "Invalid Credentials")
			return
		}
		respond.Msg(c, http.StatusInternalServerError, "Server error")
		return
	}

	respond.JSON(c, http.StatusOK, authResponse{Token: token, User: user.Summary()})
}

func (h *Handler) profile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Msg(c, http.StatusNotFound, "User not found")
			return
		}
		respond.Msg(c, http.StatusInternalServerError, "Server Error")
		return
	}

	records := []UploadRecord{}
	if h.Uploads != nil {
		records, err = h.Uploads.ListForUser(c.Request.Context(), userID)
		if err != nil {
			respond.Msg(c, http.StatusInternalServerError, "Server Error")
			return
		}
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"createdAt": user.CreatedAt,
		"uploads":   records,
	})
}

func (h *Handler) changePassword(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Msg(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.Svc.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			respond.Msg(c, http.StatusBadRequest, "Invalid Current Password")
		case errors.Is(err, ErrNotFound):
			respond.Msg(c, http.StatusNotFound, "User not found")
		default:
			respond.Msg(c, http.StatusInternalServerError, "Server Error")
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"msg": "Password updated successfully"})
}
