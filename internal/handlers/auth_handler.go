package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/herland/laundry-backend/internal/database"
	"github.com/herland/laundry-backend/internal/middleware"
	"github.com/herland/laundry-backend/internal/models"
	"github.com/herland/laundry-backend/internal/services"
	"github.com/herland/laundry-backend/internal/utils"
	"github.com/herland/laundry-backend/pkg/jwt"
	"github.com/herland/laundry-backend/pkg/validator"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles registration, login and token lifecycle
type AuthHandler struct {
	profileRepo    *database.ProfileRepository
	refreshRepo    *database.RefreshTokenRepository
	jwtService     *jwt.Service
	auditService   *services.AuditService
	phoneValidator *validator.PhoneValidator
	bcryptCost     int
	log            *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(
	profileRepo *database.ProfileRepository,
	refreshRepo *database.RefreshTokenRepository,
	jwtService *jwt.Service,
	auditService *services.AuditService,
	bcryptCost int,
	log *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		profileRepo:    profileRepo,
		refreshRepo:    refreshRepo,
		jwtService:     jwtService,
		auditService:   auditService,
		phoneValidator: validator.NewPhoneValidator(),
		bcryptCost:     bcryptCost,
		log:            log,
	}
}

// Register creates a new customer account
// @Summary Register a new customer
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} map[string]interface{} "Account created"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 409 {object} map[string]interface{} "Account already exists"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	phone := ""
	if req.Phone != "" {
		normalized, err := h.phoneValidator.ToE164(req.Phone)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		phone = normalized
	}

	if req.Email != "" {
		if _, err := h.profileRepo.GetByEmail(req.Email); err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		} else if err != sql.ErrNoRows {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing accounts"})
			return
		}
	}
	if phone != "" {
		if _, err := h.profileRepo.GetByPhone(phone); err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this phone number already exists"})
			return
		} else if err != sql.ErrNoRows {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing accounts"})
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	fullName := ""
	if req.Metadata != nil {
		fullName = req.Metadata.GetString("full_name")
	}

	profile := &models.Profile{
		ID:           uuid.New(),
		Email:        models.NewNullString(req.Email),
		PhoneNumber:  models.NewNullString(phone),
		PasswordHash: string(hash),
		FullName:     models.NewNullString(fullName),
		Role:         models.RoleCustomer,
	}

	if err := h.profileRepo.Create(profile); err != nil {
		h.log.WithError(err).Error("failed to create profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"user": gin.H{
			"id":    profile.ID,
			"email": profile.Email,
			"phone": profile.PhoneNumber,
			"role":  profile.Role,
		},
	})
}

// Login authenticates a user by email and password and issues a token pair
// @Summary Login with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} map[string]interface{} "Token pair"
// @Failure 401 {object} map[string]interface{} "Invalid credentials"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ipAddress := utils.GetRealIP(c)
	userAgent := utils.GetUserAgent(c)

	profile, err := h.profileRepo.GetByEmail(req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			_ = h.auditService.LogLoginFailure(req.Email, ipAddress, userAgent, "unknown email")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up account"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		_ = h.auditService.LogLoginFailure(req.Email, ipAddress, userAgent, "wrong password")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	accessToken, refreshToken, err := h.issueTokens(profile, ipAddress, userAgent)
	if err != nil {
		h.log.WithError(err).Error("failed to issue tokens")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue tokens"})
		return
	}

	_ = h.auditService.LogLogin(profile.ID, profile.Email.String, ipAddress, userAgent)

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": gin.H{
			"id":        profile.ID,
			"email":     profile.Email,
			"phone":     profile.PhoneNumber,
			"full_name": profile.FullName,
			"role":      profile.Role,
		},
	})
}

// RefreshToken exchanges a valid refresh token for a new token pair. The old
// refresh token is revoked, so each token works exactly once.
// @Summary Refresh the access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RefreshTokenRequest true "Refresh request"
// @Success 200 {object} map[string]interface{} "New token pair"
// @Failure 401 {object} map[string]interface{} "Invalid or revoked token"
// @Router /api/v1/auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	stored, err := h.refreshRepo.GetRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify refresh token"})
		return
	}
	if stored == nil || stored.Revoked {
		_ = h.auditService.LogTokenRefresh(claims.UserID, utils.GetRealIP(c), utils.GetUserAgent(c), false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token has been revoked"})
		return
	}

	profile, err := h.profileRepo.GetByID(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
		return
	}

	_ = h.refreshRepo.UpdateLastUsed(req.RefreshToken)
	if err := h.refreshRepo.RevokeToken(req.RefreshToken); err != nil {
		h.log.WithError(err).Warn("failed to revoke used refresh token")
	}

	ipAddress := utils.GetRealIP(c)
	userAgent := utils.GetUserAgent(c)

	accessToken, refreshToken, err := h.issueTokens(profile, ipAddress, userAgent)
	if err != nil {
		h.log.WithError(err).Error("failed to issue tokens")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue tokens"})
		return
	}

	_ = h.auditService.LogTokenRefresh(profile.ID, ipAddress, userAgent, true)

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Logout revokes the caller's refresh token. With a token in the body only
// that session ends; without one the most recent session is revoked, and
// logout_all revokes every active session.
// @Summary Logout
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LogoutRequest false "Logout request"
// @Success 200 {object} map[string]interface{} "Logged out"
// @Security BearerAuth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = models.LogoutRequest{}
	}

	switch {
	case req.LogoutAll:
		if err := h.refreshRepo.RevokeAllUserTokens(userCtx.UserID); err != nil {
			h.log.WithError(err).Warn("logout: failed to revoke all user tokens")
		}
	case strings.TrimSpace(req.RefreshToken) != "":
		if err := h.refreshRepo.RevokeToken(req.RefreshToken); err != nil {
			h.log.WithError(err).Warn("logout: failed to revoke refresh token")
		}
	default:
		if err := h.refreshRepo.RevokeMostRecentToken(userCtx.UserID); err != nil {
			h.log.WithError(err).Warn("logout: no active token to revoke")
		}
	}

	_ = h.auditService.LogLogout(userCtx.UserID, utils.GetRealIP(c), utils.GetUserAgent(c), req.LogoutAll)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// issueTokens generates an access/refresh pair and persists the refresh token
func (h *AuthHandler) issueTokens(profile *models.Profile, ipAddress, userAgent string) (string, string, error) {
	accessToken, err := h.jwtService.GenerateAccessToken(profile.ID, profile.Email.String, profile.Role)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(profile.ID, profile.Email.String)
	if err != nil {
		return "", "", err
	}

	deviceInfo := utils.ParseUserAgent(userAgent)
	expiry, err := h.jwtService.ExtractClaims(refreshToken)
	if err != nil {
		return "", "", err
	}
	if expiry.ExpiresAt == nil {
		return "", "", errors.New("refresh token has no expiry claim")
	}

	if err := h.refreshRepo.StoreRefreshToken(
		profile.ID, refreshToken,
		deviceInfo.DeviceType, ipAddress, userAgent,
		expiry.ExpiresAt.Time,
	); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}
