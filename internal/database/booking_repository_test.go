package database

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/herland/laundry-backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingCols = []string{
	"id", "user_id", "reference_number", "service_type", "status", "stage",
	"collection_option", "timeline", "service_details", "collection_details",
	"payment_details", "notes", "schedule", "created_at",
}

func bookingRow(id int64, userID uuid.UUID, ref string, now time.Time) []driverValue {
	return []driverValue{
		id, userID, ref, "Wash & Fold", "pending", "received",
		"dropOffPickUpLater",
		[]byte(`[{"status":"Booking Received","timestamp":"2026-02-15T08:00:00Z"}]`),
		[]byte(`{"weight":"5kg"}`), []byte(`{}`),
		[]byte(`{"method":"GCash","referenceNumber":"-","amountToPay":250}`),
		"", nil, now,
	}
}

type driverValue = driver.Value

func addBookingRow(rows *sqlmock.Rows, values []driverValue) *sqlmock.Rows {
	return rows.AddRow(values...)
}

func TestCreateBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(&mockDatabase{db: sqlx.NewDb(db, "sqlmock")})

	t.Run("Success", func(t *testing.T) {
		userID := uuid.New()
		now := time.Now()

		booking := &models.Booking{
			UserID:           userID,
			ReferenceNumber:  "REF-20260215-001",
			ServiceType:      "Wash & Fold",
			Status:           "pending",
			Stage:            "received",
			CollectionOption: "dropOffPickUpLater",
			Timeline: models.Timeline{
				{Status: "Booking Received", Timestamp: now},
			},
		}

		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

		err := repo.Create(booking)
		require.NoError(t, err)
		assert.Equal(t, int64(7), booking.ID)
		assert.Equal(t, now, booking.CreatedAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Create(&models.Booking{UserID: uuid.New(), ReferenceNumber: "REF-X"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create booking")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetBookingByRefOrID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(&mockDatabase{db: sqlx.NewDb(db, "sqlmock")})

	t.Run("By Reference", func(t *testing.T) {
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference_number`).
			WithArgs("REF-20260215-001").
			WillReturnRows(addBookingRow(sqlmock.NewRows(bookingCols), bookingRow(1, userID, "REF-20260215-001", now)))

		booking, err := repo.GetByRefOrID("REF-20260215-001", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), booking.ID)
		assert.Equal(t, "received", booking.Stage)
		assert.Equal(t, "Booking Received", booking.Timeline.CurrentStatus())
		assert.Equal(t, "GCash", booking.PaymentDetails.GetString("method"))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Numeric Identifier Matches Reference Or ID", func(t *testing.T) {
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE \(reference_number = \$1 OR id = \$2\)`).
			WithArgs("42", "42").
			WillReturnRows(addBookingRow(sqlmock.NewRows(bookingCols), bookingRow(42, userID, "42", now)))

		booking, err := repo.GetByRefOrID("42", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(42), booking.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Owner Scoped", func(t *testing.T) {
		ownerID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference_number = \$1 AND user_id = \$2`).
			WithArgs("REF-20260215-002", ownerID).
			WillReturnRows(addBookingRow(sqlmock.NewRows(bookingCols), bookingRow(2, ownerID, "REF-20260215-002", now)))

		booking, err := repo.GetByRefOrID("REF-20260215-002", &ownerID)
		require.NoError(t, err)
		assert.Equal(t, ownerID, booking.UserID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference_number`).
			WithArgs("REF-MISSING").
			WillReturnError(sql.ErrNoRows)

		booking, err := repo.GetByRefOrID("REF-MISSING", nil)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, booking)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetAllBookings(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(&mockDatabase{db: sqlx.NewDb(db, "sqlmock")})

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(bookingCols)
		addBookingRow(rows, bookingRow(2, uuid.New(), "REF-20260215-002", now))
		addBookingRow(rows, bookingRow(1, uuid.New(), "REF-20260215-001", now.Add(-time.Hour)))

		mock.ExpectQuery(`SELECT (.+) FROM bookings ORDER BY created_at DESC`).
			WillReturnRows(rows)

		bookings, err := repo.GetAll()
		require.NoError(t, err)
		assert.Len(t, bookings, 2)
		assert.Equal(t, "REF-20260215-002", bookings[0].ReferenceNumber)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Result", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bookings ORDER BY created_at DESC`).
			WillReturnRows(sqlmock.NewRows(bookingCols))

		bookings, err := repo.GetAll()
		require.NoError(t, err)
		assert.Len(t, bookings, 0)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateBookingLifecycle(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(&mockDatabase{db: sqlx.NewDb(db, "sqlmock")})

	t.Run("Success", func(t *testing.T) {
		booking := &models.Booking{
			ID:    5,
			Stage: "payment",
			Timeline: models.Timeline{
				{Status: "Booking Received", Timestamp: time.Now().Add(-time.Hour)},
				{Status: "Booking Accepted", Timestamp: time.Now()},
			},
			PaymentDetails: models.JSONMap{"method": "Cash"},
		}

		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(int64(5), "payment", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateLifecycle(booking)
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Booking Not Found", func(t *testing.T) {
		booking := &models.Booking{ID: 99, Stage: "payment", Timeline: models.Timeline{}}

		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(int64(99), "payment", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateLifecycle(booking)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "booking not found")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateBookingStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(&mockDatabase{db: sqlx.NewDb(db, "sqlmock")})

	t.Run("Success", func(t *testing.T) {
		userID := uuid.New()
		now := time.Now()
		row := bookingRow(3, userID, "REF-20260215-003", now)
		row[4] = "washing"

		mock.ExpectQuery(`UPDATE bookings`).
			WithArgs(int64(3), "washing").
			WillReturnRows(addBookingRow(sqlmock.NewRows(bookingCols), row))

		booking, err := repo.UpdateStatus(3, "washing")
		require.NoError(t, err)
		assert.Equal(t, "washing", booking.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE bookings`).
			WithArgs(int64(99), "washing").
			WillReturnError(sql.ErrNoRows)

		booking, err := repo.UpdateStatus(99, "washing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, booking)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetBookingStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(&mockDatabase{db: sqlx.NewDb(db, "sqlmock")})

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"total_bookings", "completed_bookings", "estimated_revenue"}).
				AddRow(12, 4, 1250.50))

		stats, err := repo.GetStats()
		require.NoError(t, err)
		assert.Equal(t, 12, stats.TotalBookings)
		assert.Equal(t, 4, stats.CompletedBookings)
		assert.Equal(t, 1250.50, stats.EstimatedRevenue)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WillReturnError(fmt.Errorf("database error"))

		stats, err := repo.GetStats()
		assert.Error(t, err)
		assert.Nil(t, stats)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// mockDatabase adapts a sqlx-wrapped sqlmock connection to the DB interface
type mockDatabase struct {
	db *sqlx.DB
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return m.db.Get(dest, query, args...)
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return m.db.Select(dest, query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}
