package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/herland/laundry-backend/internal/database"
	"github.com/sirupsen/logrus"
)

// StaffHandler handles the staff dashboard operations
type StaffHandler struct {
	bookingRepo *database.BookingRepository
	log         *logrus.Logger
}

// NewStaffHandler creates a new StaffHandler
func NewStaffHandler(bookingRepo *database.BookingRepository, log *logrus.Logger) *StaffHandler {
	return &StaffHandler{bookingRepo: bookingRepo, log: log}
}

// staffStatuses is the coarse status whitelist the staff dashboard may set.
// These track the physical laundry, not the admin workflow stage.
var staffStatuses = map[string]bool{
	"pending":   true,
	"picked_up": true,
	"washing":   true,
	"ready":     true,
	"delivered": true,
}

type staffStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus sets the coarse status column on a booking
// @Summary Update a booking's coarse status
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path int true "Booking row id"
// @Param request body staffStatusRequest true "Status"
// @Success 200 {object} map[string]interface{} "Updated booking"
// @Failure 400 {object} map[string]interface{} "Invalid status"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Security BearerAuth
// @Router /api/v1/staff/update-status/{id} [patch]
func (h *StaffHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	var req staffStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !staffStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status. Must be one of pending, picked_up, washing, ready, delivered"})
		return
	}

	booking, err := h.bookingRepo.UpdateStatus(id, req.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		h.log.WithError(err).Error("failed to update booking status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Status updated",
		"booking": gin.H{
			"dbId":   booking.ID,
			"id":     booking.ReferenceNumber,
			"status": booking.Status,
		},
	})
}

// ListBookings returns the booking list for the staff dashboard
// @Summary List bookings for staff
// @Tags Staff
// @Produce json
// @Success 200 {object} map[string]interface{} "Bookings"
// @Security BearerAuth
// @Router /api/v1/staff/bookings [get]
func (h *StaffHandler) ListBookings(c *gin.Context) {
	bookings, err := h.bookingRepo.GetAll()
	if err != nil {
		h.log.WithError(err).Error("failed to list bookings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	views := make([]gin.H, 0, len(bookings))
	for i := range bookings {
		view := bookings[i].View()
		views = append(views, gin.H{
			"dbId":             view.DBID,
			"id":               view.ID,
			"customerName":     view.CustomerName,
			"date":             view.Date,
			"status":           view.Status,
			"collectionOption": view.CollectionOption,
		})
	}

	c.JSON(http.StatusOK, gin.H{"bookings": views})
}
