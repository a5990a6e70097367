package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/herland/laundry-backend/internal/database"
	"github.com/herland/laundry-backend/internal/models"
	"github.com/herland/laundry-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
)

// UserContextKey is the key used to store user information in Gin context
const UserContextKey = "user"

// UserContext represents the authenticated user's information. Role carries
// the claim from the token; role checks re-read the profile row so a role
// change takes effect without waiting for the token to expire.
type UserContext struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

// AuthMiddleware creates a middleware that validates JWT access tokens
func AuthMiddleware(jwtService *jwt.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.WithFields(logrus.Fields{
				"path": c.Request.URL.Path,
				"ip":   c.ClientIP(),
			}).Warn("auth failed: missing authorization header")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authorization header is required",
				"code":    "MISSING_AUTH_HEADER",
			})
			c.Abort()
			return
		}

		// Check Bearer token format
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.WithFields(logrus.Fields{
				"path": c.Request.URL.Path,
				"ip":   c.ClientIP(),
			}).Warn("auth failed: invalid auth format")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid authorization header format. Expected: Bearer <token>",
				"code":    "INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Token cannot be empty",
				"code":    "INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			if jwtService.IsTokenExpired(tokenString) {
				log.WithFields(logrus.Fields{
					"path": c.Request.URL.Path,
					"ip":   c.ClientIP(),
				}).Warn("auth failed: token expired")
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "token_expired",
					"message": "Access token has expired. Please refresh your token.",
					"code":    "TOKEN_EXPIRED",
				})
			} else {
				log.WithFields(logrus.Fields{
					"path":  c.Request.URL.Path,
					"ip":    c.ClientIP(),
					"error": err.Error(),
				}).Warn("auth failed: invalid token")
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "invalid_token",
					"message": "Invalid access token",
					"code":    "INVALID_TOKEN",
				})
			}
			c.Abort()
			return
		}

		c.Set(UserContextKey, UserContext{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		})

		c.Next()
	}
}

// RequireRole creates a middleware that checks the user's role against the
// profiles table on every request. Admin passes every role check.
func RequireRole(profiles *database.ProfileRepository, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "User context not found. Auth middleware may not be applied.",
				"code":    "MISSING_USER_CONTEXT",
			})
			c.Abort()
			return
		}

		role, err := profiles.GetRole(userCtx.UserID)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Could not verify your permissions",
				"code":    "ROLE_LOOKUP_FAILED",
			})
			c.Abort()
			return
		}

		hasRole := role == models.RoleAdmin
		if !hasRole {
			for _, requiredRole := range roles {
				if role == requiredRole {
					hasRole = true
					break
				}
			}
		}

		if !hasRole {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "You don't have permission to access this resource",
				"code":    "INSUFFICIENT_PERMISSIONS",
			})
			c.Abort()
			return
		}

		// Keep the context role in sync with the database
		userCtx.Role = role
		c.Set(UserContextKey, userCtx)

		c.Next()
	}
}

// GetUserContext retrieves the user context from Gin context
func GetUserContext(c *gin.Context) (UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return UserContext{}, false
	}

	userCtx, ok := value.(UserContext)
	if !ok {
		return UserContext{}, false
	}

	return userCtx, true
}

// MustGetUserContext retrieves the user context or panics (use only after AuthMiddleware)
func MustGetUserContext(c *gin.Context) UserContext {
	userCtx, exists := GetUserContext(c)
	if !exists {
		panic("user context not found - ensure AuthMiddleware is applied")
	}
	return userCtx
}
