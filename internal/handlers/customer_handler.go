package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/herland/laundry-backend/internal/database"
	"github.com/herland/laundry-backend/internal/lifecycle"
	"github.com/herland/laundry-backend/internal/metrics"
	"github.com/herland/laundry-backend/internal/middleware"
	"github.com/herland/laundry-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// CustomerHandler handles the customer-facing booking operations
type CustomerHandler struct {
	bookingRepo      *database.BookingRepository
	profileRepo      *database.ProfileRepository
	notificationRepo *database.NotificationRepository
	log              *logrus.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(
	bookingRepo *database.BookingRepository,
	profileRepo *database.ProfileRepository,
	notificationRepo *database.NotificationRepository,
	log *logrus.Logger,
) *CustomerHandler {
	return &CustomerHandler{
		bookingRepo:      bookingRepo,
		profileRepo:      profileRepo,
		notificationRepo: notificationRepo,
		log:              log,
	}
}

// CreateBooking submits a new laundry booking for the authenticated customer
// @Summary Create a booking
// @Tags Customer
// @Accept json
// @Produce json
// @Param request body models.CreateBookingRequest true "Booking"
// @Success 201 {object} map[string]interface{} "Created booking"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Security BearerAuth
// @Router /api/v1/customer/book [post]
func (h *CustomerHandler) CreateBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	collectionOption := req.CollectionOption
	if collectionOption == "" {
		collectionOption = models.CollectionDropOffPickUpLater
	}

	booking := &models.Booking{
		UserID:            userCtx.UserID,
		ReferenceNumber:   req.ReferenceNumber,
		ServiceType:       req.ServiceTypeSummary(),
		Status:            "pending",
		Stage:             lifecycle.StageReceived,
		CollectionOption:  collectionOption,
		Timeline:          models.Timeline{{Status: "Booking Received", Timestamp: time.Now()}},
		ServiceDetails:    req.ServiceDetails,
		CollectionDetails: req.CollectionDetails,
		PaymentDetails:    req.PaymentDetails,
		Notes:             req.Notes,
	}

	if err := h.bookingRepo.Create(booking); err != nil {
		h.log.WithError(err).Error("failed to create booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}

	metrics.RecordBookingCreated()

	message := fmt.Sprintf("New booking for %s confirmed!", booking.ServiceType)
	if err := h.notificationRepo.Create(userCtx.UserID, message); err != nil {
		// The booking exists; a missing notification is not worth a 500
		h.log.WithError(err).Warn("failed to create booking notification")
	}

	view := booking.View()
	c.JSON(http.StatusCreated, gin.H{
		"message": "Booking created",
		"booking": view,
	})
}

// MyBookings returns the authenticated customer's bookings, newest first
// @Summary List my bookings
// @Tags Customer
// @Produce json
// @Success 200 {object} map[string]interface{} "Bookings"
// @Security BearerAuth
// @Router /api/v1/customer/my-bookings [get]
func (h *CustomerHandler) MyBookings(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookings, err := h.bookingRepo.GetByUserID(userCtx.UserID)
	if err != nil {
		h.log.WithError(err).Error("failed to list customer bookings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	views := make([]models.BookingView, 0, len(bookings))
	for i := range bookings {
		views = append(views, bookings[i].View())
	}

	c.JSON(http.StatusOK, gin.H{"bookings": views})
}

// MyBooking returns a single booking by reference number or row id. Customers
// only see their own bookings; admins and staff can look up any booking.
// @Summary Get one of my bookings
// @Tags Customer
// @Produce json
// @Param id path string true "Booking reference or row id"
// @Success 200 {object} map[string]interface{} "Booking"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Security BearerAuth
// @Router /api/v1/customer/my-bookings/{id} [get]
func (h *CustomerHandler) MyBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ownerID := &userCtx.UserID
	role, err := h.profileRepo.GetRole(userCtx.UserID)
	if err == nil && (role == models.RoleAdmin || role == models.RoleStaff) {
		ownerID = nil
	}

	booking, err := h.bookingRepo.GetByRefOrID(c.Param("id"), ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		h.log.WithError(err).Error("failed to fetch booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking.View()})
}

// SubmitPaymentReference merges the customer's GCash reference number into
// the booking's payment details without touching the other keys.
// @Summary Submit a payment reference number
// @Tags Customer
// @Accept json
// @Produce json
// @Param id path string true "Booking reference or row id"
// @Param request body models.PaymentReferenceRequest true "Reference number"
// @Success 200 {object} map[string]interface{} "Updated payment details"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Security BearerAuth
// @Router /api/v1/customer/my-bookings/{id}/payment-reference [post]
func (h *CustomerHandler) SubmitPaymentReference(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.PaymentReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !lifecycle.HasReferenceNumber(req.ReferenceNumber) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid reference number is required"})
		return
	}

	booking, err := h.bookingRepo.GetByRefOrID(c.Param("id"), &userCtx.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		h.log.WithError(err).Error("failed to fetch booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking"})
		return
	}

	if booking.PaymentDetails == nil {
		booking.PaymentDetails = models.JSONMap{}
	}
	booking.PaymentDetails["referenceNumber"] = req.ReferenceNumber

	if err := h.bookingRepo.UpdatePaymentDetails(booking.ID, booking.PaymentDetails); err != nil {
		h.log.WithError(err).Error("failed to save payment reference")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save payment reference"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Payment reference saved",
		"paymentDetails": booking.PaymentDetails,
	})
}

// Notifications returns the customer's notifications, newest first
// @Summary List my notifications
// @Tags Customer
// @Produce json
// @Success 200 {object} map[string]interface{} "Notifications"
// @Security BearerAuth
// @Router /api/v1/customer/notifications [get]
func (h *CustomerHandler) Notifications(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	notifications, err := h.notificationRepo.GetByUserID(userCtx.UserID)
	if err != nil {
		h.log.WithError(err).Error("failed to fetch notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
