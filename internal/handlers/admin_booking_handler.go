package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/herland/laundry-backend/internal/database"
	"github.com/herland/laundry-backend/internal/lifecycle"
	"github.com/herland/laundry-backend/internal/metrics"
	"github.com/herland/laundry-backend/internal/middleware"
	"github.com/herland/laundry-backend/internal/models"
	"github.com/herland/laundry-backend/internal/services"
	"github.com/herland/laundry-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// AdminBookingHandler handles booking management on the admin dashboard
type AdminBookingHandler struct {
	bookingRepo   *database.BookingRepository
	auditService  *services.AuditService
	exportService *services.ExportService
	log           *logrus.Logger
}

// NewAdminBookingHandler creates a new AdminBookingHandler
func NewAdminBookingHandler(
	bookingRepo *database.BookingRepository,
	auditService *services.AuditService,
	exportService *services.ExportService,
	log *logrus.Logger,
) *AdminBookingHandler {
	return &AdminBookingHandler{
		bookingRepo:   bookingRepo,
		auditService:  auditService,
		exportService: exportService,
		log:           log,
	}
}

// ListBookings returns every booking in the normalized dashboard shape,
// newest first, with the available actions for each booking's stage.
// @Summary List all bookings
// @Tags Admin Bookings
// @Produce json
// @Success 200 {object} map[string]interface{} "Bookings"
// @Security BearerAuth
// @Router /api/v1/admin/bookings [get]
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
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
			"id":                view.ID,
			"dbId":              view.DBID,
			"userId":            view.UserID,
			"customerName":      view.CustomerName,
			"date":              view.Date,
			"collectionOption":  view.CollectionOption,
			"stage":             view.Stage,
			"timeline":          view.Timeline,
			"serviceDetails":    view.ServiceDetails,
			"collectionDetails": view.CollectionDetails,
			"paymentDetails":    view.PaymentDetails,
			"status":            view.Status,
			"notes":             view.Notes,
			"availableActions":  lifecycle.ActionsFor(view.Stage, view.CollectionOption),
		})
	}

	c.JSON(http.StatusOK, gin.H{"bookings": views})
}

// UpdateStatus applies a lifecycle action to a booking. The request carries
// either the action label or the legacy status/nextStage pair; both paths
// validate against the transition table before anything is written.
// @Summary Apply a lifecycle action to a booking
// @Tags Admin Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking reference or row id"
// @Param request body models.UpdateStatusRequest true "Action"
// @Success 200 {object} map[string]interface{} "Updated booking"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Failure 409 {object} map[string]interface{} "Action not allowed from current stage"
// @Failure 422 {object} map[string]interface{} "Payment cannot be confirmed"
// @Security BearerAuth
// @Router /api/v1/admin/bookings/{id}/status [put]
func (h *AdminBookingHandler) UpdateStatus(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	action := req.Action
	if action == "" {
		if req.Status == "" || req.NextStage == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Either action or status and nextStage are required"})
			return
		}
		resolved, ok := lifecycle.ActionByStatus(req.Status, req.NextStage)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown status transition %q -> %q", req.Status, req.NextStage)})
			return
		}
		action = resolved
	}

	booking, err := h.bookingRepo.GetByRefOrID(c.Param("id"), nil)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking"})
		return
	}

	fromStage := booking.Stage
	if err := lifecycle.Apply(booking, action, time.Now()); err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrUnknownAction):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, lifecycle.ErrIllegalTransition):
			metrics.RecordRejectedTransition()
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, lifecycle.ErrPaymentNotConfirmable):
			metrics.RecordRejectedTransition()
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Payment cannot be confirmed without a GCash reference number"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply action"})
		}
		return
	}

	if err := h.bookingRepo.UpdateLifecycle(booking); err != nil {
		h.log.WithError(err).Error("failed to persist lifecycle transition")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update booking"})
		return
	}

	metrics.RecordBookingAction(action)
	_ = h.auditService.LogBookingAction(userCtx.UserID, booking.ReferenceNumber, action, fromStage, booking.Stage, utils.GetRealIP(c))

	view := booking.View()
	c.JSON(http.StatusOK, gin.H{
		"message": "Booking updated",
		"booking": gin.H{
			"id":               view.ID,
			"dbId":             view.DBID,
			"stage":            view.Stage,
			"timeline":         view.Timeline,
			"paymentDetails":   view.PaymentDetails,
			"availableActions": lifecycle.ActionsFor(view.Stage, view.CollectionOption),
		},
	})
}

// UpdateAmount sets the amount to pay on a booking. Once the payment has
// been confirmed the amount is locked and the edit is rejected.
// @Summary Edit the amount to pay on a booking
// @Tags Admin Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking reference or row id"
// @Param request body models.UpdateAmountRequest true "Amount"
// @Success 200 {object} map[string]interface{} "Updated payment details"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Failure 409 {object} map[string]interface{} "Amount locked after payment confirmation"
// @Security BearerAuth
// @Router /api/v1/admin/bookings/{id}/amount [put]
func (h *AdminBookingHandler) UpdateAmount(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := h.bookingRepo.GetByRefOrID(c.Param("id"), nil)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking"})
		return
	}

	if lifecycle.PaymentLocked(booking.PaymentDetails) {
		c.JSON(http.StatusConflict, gin.H{"error": "Amount can no longer be edited after payment confirmation"})
		return
	}

	if booking.PaymentDetails == nil {
		booking.PaymentDetails = models.JSONMap{}
	}
	booking.PaymentDetails["amountToPay"] = req.AmountToPay

	if err := h.bookingRepo.UpdatePaymentDetails(booking.ID, booking.PaymentDetails); err != nil {
		h.log.WithError(err).Error("failed to update amount")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update amount"})
		return
	}

	_ = h.auditService.LogAmountChange(userCtx.UserID, booking.ReferenceNumber, req.AmountToPay, utils.GetRealIP(c))

	c.JSON(http.StatusOK, gin.H{
		"message":        "Amount updated",
		"paymentDetails": booking.PaymentDetails,
	})
}

// ExportBookings streams the booking list as an xlsx workbook
// @Summary Export bookings to Excel
// @Tags Admin Bookings
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary "Workbook"
// @Security BearerAuth
// @Router /api/v1/admin/bookings/export [get]
func (h *AdminBookingHandler) ExportBookings(c *gin.Context) {
	bookings, err := h.bookingRepo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	content, fileName, err := h.exportService.BookingsToExcel(bookings)
	if err != nil {
		h.log.WithError(err).Error("failed to build export")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

// DashboardStats returns the counters shown at the top of the admin dashboard
// @Summary Dashboard statistics
// @Tags Admin Bookings
// @Produce json
// @Success 200 {object} map[string]interface{} "Stats"
// @Security BearerAuth
// @Router /api/v1/admin/dashboard-stats [get]
func (h *AdminBookingHandler) DashboardStats(c *gin.Context) {
	stats, err := h.bookingRepo.GetStats()
	if err != nil {
		h.log.WithError(err).Error("failed to compute stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalBookings":     stats.TotalBookings,
		"completedBookings": stats.CompletedBookings,
		"estimatedRevenue":  stats.EstimatedRevenue,
	})
}
