package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/herland/laundry-backend/internal/database"
	"github.com/herland/laundry-backend/internal/utils"
)

// AuditService handles audit logging for security and workflow events
type AuditService struct {
	db database.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB) *AuditService {
	return &AuditService{db: db}
}

// AuditEvent represents an event to be logged
type AuditEvent struct {
	UserID     *uuid.UUID // Can be nil for pre-authentication events
	Action     string     // e.g. "login", "logout", "booking_status_change"
	EntityType string     // e.g. "user", "booking", "service_item"
	EntityID   string     // Identifier of the affected entity, empty when none
	IPAddress  string
	UserAgent  string
	Details    map[string]interface{}
}

// LogLogin logs a successful login event
func (s *AuditService) LogLogin(userID uuid.UUID, email, ipAddress, userAgent string) error {
	details := map[string]interface{}{
		"email":       email,
		"device_info": utils.ParseUserAgent(userAgent),
	}

	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "login",
		EntityType: "user",
		EntityID:   userID.String(),
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogLoginFailure logs a failed login attempt
func (s *AuditService) LogLoginFailure(email, ipAddress, userAgent, reason string) error {
	details := map[string]interface{}{
		"email":       email,
		"reason":      reason,
		"device_info": utils.ParseUserAgent(userAgent),
	}

	return s.logEvent(AuditEvent{
		Action:     "login_failed",
		EntityType: "user",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogLogout logs a logout event
func (s *AuditService) LogLogout(userID uuid.UUID, ipAddress, userAgent string, logoutAll bool) error {
	details := map[string]interface{}{
		"logout_all":  logoutAll,
		"device_info": utils.ParseUserAgent(userAgent),
	}

	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "logout",
		EntityType: "user",
		EntityID:   userID.String(),
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogTokenRefresh logs a refresh token usage event
func (s *AuditService) LogTokenRefresh(userID uuid.UUID, ipAddress, userAgent string, success bool) error {
	action := "token_refresh_success"
	if !success {
		action = "token_refresh_failed"
	}

	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     action,
		EntityType: "token",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    map[string]interface{}{"success": success},
	})
}

// LogBookingAction logs a lifecycle action applied to a booking
func (s *AuditService) LogBookingAction(userID uuid.UUID, bookingRef, action, fromStage, toStage, ipAddress string) error {
	details := map[string]interface{}{
		"action":     action,
		"from_stage": fromStage,
		"to_stage":   toStage,
	}

	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "booking_status_change",
		EntityType: "booking",
		EntityID:   bookingRef,
		IPAddress:  ipAddress,
		Details:    details,
	})
}

// LogAmountChange logs an edit to a booking's amount to pay
func (s *AuditService) LogAmountChange(userID uuid.UUID, bookingRef string, amount float64, ipAddress string) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "booking_amount_change",
		EntityType: "booking",
		EntityID:   bookingRef,
		IPAddress:  ipAddress,
		Details:    map[string]interface{}{"amount_to_pay": amount},
	})
}

// logEvent is the internal method that writes to the audit_logs table
func (s *AuditService) logEvent(event AuditEvent) error {
	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	var detailsJSON []byte
	if event.Details != nil {
		var err error
		detailsJSON, err = json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
	}

	var entityID interface{}
	if event.EntityID != "" {
		entityID = event.EntityID
	}

	_, err := s.db.Exec(
		query,
		event.UserID,
		event.Action,
		event.EntityType,
		entityID,
		event.IPAddress,
		event.UserAgent,
		detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}

// CleanupOldAuditLogs removes audit logs older than the specified duration
func (s *AuditService) CleanupOldAuditLogs(olderThan time.Duration) (int64, error) {
	cutoffTime := time.Now().Add(-olderThan)

	result, err := s.db.Exec(`DELETE FROM audit_logs WHERE created_at < $1`, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old audit logs: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
