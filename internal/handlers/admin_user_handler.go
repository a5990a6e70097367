package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/herland/laundry-backend/internal/database"
	"github.com/herland/laundry-backend/internal/middleware"
	"github.com/herland/laundry-backend/internal/models"
	"github.com/herland/laundry-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// AdminUserHandler handles user management on the admin dashboard
type AdminUserHandler struct {
	profileRepo    *database.ProfileRepository
	phoneValidator *validator.PhoneValidator
	log            *logrus.Logger
}

// NewAdminUserHandler creates a new AdminUserHandler
func NewAdminUserHandler(profileRepo *database.ProfileRepository, log *logrus.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		profileRepo:    profileRepo,
		phoneValidator: validator.NewPhoneValidator(),
		log:            log,
	}
}

// ListUsers returns every user profile
// @Summary List all users
// @Tags Admin Users
// @Produce json
// @Success 200 {object} map[string]interface{} "Users"
// @Security BearerAuth
// @Router /api/v1/admin/users [get]
func (h *AdminUserHandler) ListUsers(c *gin.Context) {
	profiles, err := h.profileRepo.GetAll()
	if err != nil {
		h.log.WithError(err).Error("failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	users := make([]models.UserView, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, models.UserView{
			ID:        p.ID,
			Email:     p.Email,
			Phone:     p.PhoneNumber,
			FullName:  p.FullName,
			Role:      p.Role,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateUser updates profile fields and optionally the role of a user
// @Summary Update a user
// @Tags Admin Users
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param request body models.UpdateUserRequest true "Fields to update"
// @Success 200 {object} map[string]interface{} "Updated user"
// @Failure 400 {object} map[string]interface{} "Invalid role"
// @Failure 404 {object} map[string]interface{} "User not found"
// @Security BearerAuth
// @Router /api/v1/admin/users/{id} [put]
func (h *AdminUserHandler) UpdateUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.Role != "" && !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Must be one of Customer, Staff, Rider, Admin"})
		return
	}

	if req.Phone != nil && *req.Phone != "" {
		normalized, err := h.phoneValidator.ToE164(*req.Phone)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.Phone = &normalized
	}

	profile, err := h.profileRepo.Update(userID, &req)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.WithError(err).Error("failed to update user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated",
		"user": models.UserView{
			ID:        profile.ID,
			Email:     profile.Email,
			Phone:     profile.PhoneNumber,
			FullName:  profile.FullName,
			Role:      profile.Role,
			CreatedAt: profile.CreatedAt,
			UpdatedAt: profile.UpdatedAt,
		},
	})
}

// DeleteUser removes a user. Admins cannot delete their own account, which
// keeps at least one working admin login around.
// @Summary Delete a user
// @Tags Admin Users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Failure 404 {object} map[string]interface{} "User not found"
// @Security BearerAuth
// @Router /api/v1/admin/users/{id} [delete]
func (h *AdminUserHandler) DeleteUser(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	if userID == userCtx.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}

	if err := h.profileRepo.Delete(userID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.WithError(err).Error("failed to delete user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
