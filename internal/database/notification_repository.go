package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/herland/laundry-backend/internal/models"
)

// NotificationRepository handles database operations for the notifications table
type NotificationRepository struct {
	db DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification for a user
func (r *NotificationRepository) Create(userID uuid.UUID, message string) error {
	query := `INSERT INTO notifications (user_id, message) VALUES ($1, $2)`

	if _, err := r.db.Exec(query, userID, message); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByUserID retrieves a user's notifications, newest first
func (r *NotificationRepository) GetByUserID(userID uuid.UUID) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, message, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	notifications := []models.Notification{}
	if err := r.db.Select(&notifications, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	return notifications, nil
}
