package database

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/herland/laundry-backend/internal/models"
)

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	id, user_id, reference_number, service_type, status, stage,
	collection_option, timeline, service_details, collection_details,
	payment_details, notes, schedule, created_at
`

// Create inserts a new booking and fills in the generated id and created_at
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			user_id, reference_number, service_type, status, stage,
			collection_option, timeline, service_details, collection_details,
			payment_details, notes, schedule
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		booking.UserID, booking.ReferenceNumber, booking.ServiceType,
		booking.Status, booking.Stage, booking.CollectionOption,
		booking.Timeline, booking.ServiceDetails, booking.CollectionDetails,
		booking.PaymentDetails, booking.Notes, booking.Schedule,
	).Scan(&booking.ID, &booking.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetAll retrieves every booking, newest first
func (r *BookingRepository) GetAll() ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`

	bookings := []models.Booking{}
	if err := r.db.Select(&bookings, query); err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	return bookings, nil
}

// GetByID retrieves a booking by its row id
func (r *BookingRepository) GetByID(id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking models.Booking
	if err := r.db.Get(&booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByUserID retrieves all bookings for a user, newest first
func (r *BookingRepository) GetByUserID(userID uuid.UUID) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`

	bookings := []models.Booking{}
	if err := r.db.Select(&bookings, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	return bookings, nil
}

var numericID = regexp.MustCompile(`^\d+$`)

// GetByRefOrID looks a booking up by reference number, falling back to the
// row id when the identifier is numeric. When ownerID is non-nil the lookup
// is restricted to that user's bookings; admins and staff pass nil to bypass
// the ownership check.
func (r *BookingRepository) GetByRefOrID(idOrRef string, ownerID *uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	var err error

	if numericID.MatchString(idOrRef) {
		query := `SELECT ` + bookingColumns + ` FROM bookings WHERE (reference_number = $1 OR id = $2)`
		if ownerID != nil {
			query += ` AND user_id = $3`
			err = r.db.Get(&booking, query, idOrRef, idOrRef, *ownerID)
		} else {
			err = r.db.Get(&booking, query, idOrRef, idOrRef)
		}
	} else {
		query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference_number = $1`
		if ownerID != nil {
			query += ` AND user_id = $2`
			err = r.db.Get(&booking, query, idOrRef, *ownerID)
		} else {
			err = r.db.Get(&booking, query, idOrRef)
		}
	}

	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateLifecycle persists a lifecycle transition: the new stage, the
// appended timeline, and the payment details in one write.
func (r *BookingRepository) UpdateLifecycle(booking *models.Booking) error {
	query := `
		UPDATE bookings
		SET stage = $2, timeline = $3, payment_details = $4
		WHERE id = $1
	`

	result, err := r.db.Exec(query, booking.ID, booking.Stage, booking.Timeline, booking.PaymentDetails)
	if err != nil {
		return fmt.Errorf("failed to update booking lifecycle: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// UpdatePaymentDetails overwrites the payment_details jsonb blob
func (r *BookingRepository) UpdatePaymentDetails(id int64, details models.JSONMap) error {
	query := `UPDATE bookings SET payment_details = $2 WHERE id = $1`

	result, err := r.db.Exec(query, id, details)
	if err != nil {
		return fmt.Errorf("failed to update payment details: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// UpdateStatus sets the coarse status column used by the staff dashboard
func (r *BookingRepository) UpdateStatus(id int64, status string) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $2
		WHERE id = $1
		RETURNING ` + bookingColumns

	var booking models.Booking
	if err := r.db.Get(&booking, query, id, status); err != nil {
		return nil, err
	}
	return &booking, nil
}

// BookingStats summarizes the dashboard counters
type BookingStats struct {
	TotalBookings     int     `db:"total_bookings"`
	CompletedBookings int     `db:"completed_bookings"`
	EstimatedRevenue  float64 `db:"estimated_revenue"`
}

// GetStats computes booking totals and estimated revenue. A booking counts
// as completed once it reaches the done stage or the delivered status, and
// revenue sums the confirmed amounts from the payment details blobs.
func (r *BookingRepository) GetStats() (*BookingStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_bookings,
			COUNT(*) FILTER (WHERE stage = 'done' OR status = 'delivered') AS completed_bookings,
			COALESCE(SUM(
				CASE WHEN LOWER(payment_details->>'status') LIKE '%payment confirmed%'
				     THEN (payment_details->>'amountToPay')::numeric
				     ELSE 0 END
			), 0) AS estimated_revenue
		FROM bookings
	`

	var stats BookingStats
	if err := r.db.Get(&stats, query); err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}
	return &stats, nil
}
