package database

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/herland/laundry-backend/internal/models"
)

// RefreshTokenRepository handles refresh token database operations
type RefreshTokenRepository struct {
	db DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// hashToken creates a SHA-256 hash of the token for storage
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// StoreRefreshToken stores a refresh token in the database. Only the hash is
// persisted; the token itself never touches disk.
func (r *RefreshTokenRepository) StoreRefreshToken(
	userID uuid.UUID,
	token string,
	deviceType, ipAddress, userAgent string,
	expiresAt time.Time,
) error {
	query := `
		INSERT INTO refresh_tokens (
			user_id, token_hash, device_type, ip_address, user_agent, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	var deviceTypeVal, ipVal, userAgentVal interface{}
	if deviceType != "" {
		deviceTypeVal = deviceType
	}
	if ipAddress != "" {
		ipVal = ipAddress
	}
	if userAgent != "" {
		userAgentVal = userAgent
	}

	_, err := r.db.Exec(query, userID, hashToken(token), deviceTypeVal, ipVal, userAgentVal, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	return nil
}

// GetRefreshToken retrieves a refresh token by its hash. Returns nil without
// an error when the token is unknown.
func (r *RefreshTokenRepository) GetRefreshToken(token string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, device_type, ip_address, user_agent,
		       created_at, expires_at, last_used_at, revoked, revoked_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`

	var refreshToken models.RefreshToken
	err := r.db.Get(&refreshToken, query, hashToken(token))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return &refreshToken, nil
}

// RevokeToken revokes a specific refresh token
func (r *RefreshTokenRepository) RevokeToken(token string) error {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE,
		    revoked_at = $1
		WHERE token_hash = $2 AND revoked = FALSE
	`

	result, err := r.db.Exec(query, time.Now(), hashToken(token))
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("token not found or already revoked")
	}

	return nil
}

// RevokeAllUserTokens revokes all refresh tokens for a user
func (r *RefreshTokenRepository) RevokeAllUserTokens(userID uuid.UUID) error {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE,
		    revoked_at = $1
		WHERE user_id = $2 AND revoked = FALSE
	`

	_, err := r.db.Exec(query, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to revoke all user tokens: %w", err)
	}

	return nil
}

// RevokeMostRecentToken revokes the most recent active token for a user.
// Used when logout is called without a refresh token in the body.
func (r *RefreshTokenRepository) RevokeMostRecentToken(userID uuid.UUID) error {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE,
		    revoked_at = $1
		WHERE id = (
			SELECT id
			FROM refresh_tokens
			WHERE user_id = $2
			  AND revoked = FALSE
			  AND expires_at > $3
			ORDER BY created_at DESC
			LIMIT 1
		)
	`

	result, err := r.db.Exec(query, time.Now(), userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to revoke most recent token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no active tokens found to revoke")
	}

	return nil
}

// UpdateLastUsed updates the last_used_at timestamp for a token
func (r *RefreshTokenRepository) UpdateLastUsed(token string) error {
	query := `
		UPDATE refresh_tokens
		SET last_used_at = $1
		WHERE token_hash = $2
	`

	_, err := r.db.Exec(query, time.Now(), hashToken(token))
	if err != nil {
		return fmt.Errorf("failed to update last used timestamp: %w", err)
	}

	return nil
}

// CleanupExpiredTokens removes expired refresh tokens
func (r *RefreshTokenRepository) CleanupExpiredTokens() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM refresh_tokens WHERE expires_at < $1`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
