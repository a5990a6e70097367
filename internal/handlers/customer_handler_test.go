package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/herland/laundry-backend/internal/database"
	"github.com/herland/laundry-backend/internal/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func setupCustomerHandler(db *sqlx.DB) *CustomerHandler {
	return NewCustomerHandler(
		database.NewBookingRepository(db),
		database.NewProfileRepository(db),
		database.NewNotificationRepository(db),
		testLogger(),
	)
}

// customerRequest runs a handler through a router with the given user id in
// the request context.
func customerRequest(handler gin.HandlerFunc, userID uuid.UUID, method, path, target string, body interface{}) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{
			UserID: userID,
			Role:   "Customer",
		})
	})
	router.Handle(method, path, handler)

	var reqBody *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, target, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateBooking(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	handler := setupCustomerHandler(db)
	userID := uuid.New()

	mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow(int64(42), time.Now()))
	mock.ExpectExec(`INSERT INTO notifications`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := customerRequest(handler.CreateBooking, userID, http.MethodPost, "/book", "/book", gin.H{
		"reference_number": "REF-20260215-001",
		"service_details": gin.H{
			"selectedServices": []string{"Wash & Fold", "Ironing"},
		},
		"payment_details": gin.H{"method": "GCash", "referenceNumber": "-"},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Wash & Fold, Ironing")
	assert.Contains(t, w.Body.String(), `"stage":"received"`)
	assert.Contains(t, w.Body.String(), "Booking Received")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_NotificationFailureIsNotFatal(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	handler := setupCustomerHandler(db)
	userID := uuid.New()

	mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow(int64(42), time.Now()))
	mock.ExpectExec(`INSERT INTO notifications`).
		WillReturnError(sql.ErrConnDone)

	w := customerRequest(handler.CreateBooking, userID, http.MethodPost, "/book", "/book", gin.H{
		"reference_number": "REF-20260215-002",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_MissingReference(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()

	handler := setupCustomerHandler(db)

	w := customerRequest(handler.CreateBooking, uuid.New(), http.MethodPost, "/book", "/book", gin.H{
		"notes": "no reference",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMyBookings(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	handler := setupCustomerHandler(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(adminBookingCols).
			AddRow(adminBookingRow("received", `{}`)...))

	w := customerRequest(handler.MyBookings, userID, http.MethodGet, "/my-bookings", "/my-bookings", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "REF-20260215-001")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMyBooking_OwnershipScoped(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	handler := setupCustomerHandler(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT role FROM profiles WHERE id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("Customer"))
	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference_number = \$1 AND user_id = \$2`).
		WithArgs("REF-20260215-001", userID).
		WillReturnRows(sqlmock.NewRows(adminBookingCols).
			AddRow(adminBookingRow("payment", `{}`)...))

	w := customerRequest(handler.MyBooking, userID, http.MethodGet, "/my-bookings/:id",
		"/my-bookings/REF-20260215-001", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMyBooking_OtherCustomersBookingNotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	handler := setupCustomerHandler(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT role FROM profiles WHERE id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("Customer"))
	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference_number = \$1 AND user_id = \$2`).
		WithArgs("REF-20260215-001", userID).
		WillReturnError(sql.ErrNoRows)

	w := customerRequest(handler.MyBooking, userID, http.MethodGet, "/my-bookings/:id",
		"/my-bookings/REF-20260215-001", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMyBooking_StaffBypassesOwnership(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	handler := setupCustomerHandler(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT role FROM profiles WHERE id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("Staff"))
	// No user_id filter for staff lookups
	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference_number = \$1$`).
		WithArgs("REF-20260215-001").
		WillReturnRows(sqlmock.NewRows(adminBookingCols).
			AddRow(adminBookingRow("payment", `{}`)...))

	w := customerRequest(handler.MyBooking, userID, http.MethodGet, "/my-bookings/:id",
		"/my-bookings/REF-20260215-001", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitPaymentReference(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	handler := setupCustomerHandler(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference_number = \$1 AND user_id = \$2`).
		WithArgs("REF-20260215-001", userID).
		WillReturnRows(sqlmock.NewRows(adminBookingCols).
			AddRow(adminBookingRow("payment", `{"method":"GCash","amountToPay":250}`)...))
	mock.ExpectExec(`UPDATE bookings SET payment_details`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := customerRequest(handler.SubmitPaymentReference, userID, http.MethodPost,
		"/my-bookings/:id/payment-reference",
		"/my-bookings/REF-20260215-001/payment-reference",
		gin.H{"referenceNumber": "1234567890123"})

	assert.Equal(t, http.StatusOK, w.Code)
	// The merge keeps the existing keys alongside the new reference
	assert.Contains(t, w.Body.String(), `"referenceNumber":"1234567890123"`)
	assert.Contains(t, w.Body.String(), `"amountToPay":250`)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitPaymentReference_PlaceholderRejected(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()

	handler := setupCustomerHandler(db)

	w := customerRequest(handler.SubmitPaymentReference, uuid.New(), http.MethodPost,
		"/my-bookings/:id/payment-reference",
		"/my-bookings/REF-20260215-001/payment-reference",
		gin.H{"referenceNumber": "-"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotifications(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	handler := setupCustomerHandler(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM notifications WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "message", "created_at"}).
			AddRow(int64(1), userID, "New booking for Wash & Fold confirmed!", time.Now()))

	w := customerRequest(handler.Notifications, userID, http.MethodGet,
		"/notifications", "/notifications", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "confirmed!")

	assert.NoError(t, mock.ExpectationsWereMet())
}
