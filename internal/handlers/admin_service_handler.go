package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/herland/laundry-backend/internal/database"
	"github.com/herland/laundry-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// AdminServiceHandler handles the services management page: priced items,
// the shop schedule, and the FAQ list.
type AdminServiceHandler struct {
	catalogRepo *database.CatalogRepository
	log         *logrus.Logger
}

// NewAdminServiceHandler creates a new AdminServiceHandler
func NewAdminServiceHandler(catalogRepo *database.CatalogRepository, log *logrus.Logger) *AdminServiceHandler {
	return &AdminServiceHandler{catalogRepo: catalogRepo, log: log}
}

// GetServices returns services, add-ons and the shop schedule in one payload
// @Summary Get the services catalog
// @Tags Admin Services
// @Produce json
// @Success 200 {object} map[string]interface{} "Catalog"
// @Security BearerAuth
// @Router /api/v1/admin/services [get]
func (h *AdminServiceHandler) GetServices(c *gin.Context) {
	services, err := h.catalogRepo.GetItems(models.ItemTypeService)
	if err != nil {
		h.log.WithError(err).Error("failed to fetch services")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch services"})
		return
	}

	addOns, err := h.catalogRepo.GetItems(models.ItemTypeAddon)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch add-ons"})
		return
	}

	schedule, err := h.catalogRepo.GetSchedule()
	if err != nil {
		if err == sql.ErrNoRows {
			schedule = &models.ShopSchedule{Opens: "08:00", Closes: "18:00"}
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch schedule"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"services": services,
		"addOns":   addOns,
		"schedule": schedule,
	})
}

// CreateItem adds a new service or add-on
// @Summary Create a service item
// @Tags Admin Services
// @Accept json
// @Produce json
// @Param request body models.CreateItemRequest true "Item"
// @Success 201 {object} map[string]interface{} "Created item"
// @Security BearerAuth
// @Router /api/v1/admin/services/items [post]
func (h *AdminServiceHandler) CreateItem(c *gin.Context) {
	var req models.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	item := &models.ServiceItem{
		ID:           uuid.New().String(),
		Type:         req.Type,
		Name:         req.Name,
		CurrentPrice: req.CurrentPrice,
	}

	if err := h.catalogRepo.CreateItem(item); err != nil {
		h.log.WithError(err).Error("failed to create service item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create item"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Item created", "item": item})
}

// UpdateItem edits an item's price. The client sends the full price pair, so
// a price edit and a revert are the same request with the values swapped.
// @Summary Update a service item price
// @Tags Admin Services
// @Accept json
// @Produce json
// @Param id path string true "Item id"
// @Param request body models.UpdateItemRequest true "Price pair"
// @Success 200 {object} map[string]interface{} "Updated item"
// @Failure 404 {object} map[string]interface{} "Item not found"
// @Security BearerAuth
// @Router /api/v1/admin/services/items/{id} [put]
func (h *AdminServiceHandler) UpdateItem(c *gin.Context) {
	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	item, err := h.catalogRepo.UpdateItemPrice(c.Param("id"), req.CurrentPrice, req.PreviousPrice)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		h.log.WithError(err).Error("failed to update service item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item updated", "item": item})
}

// DeleteItem removes a service or add-on
// @Summary Delete a service item
// @Tags Admin Services
// @Produce json
// @Param id path string true "Item id"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Failure 404 {object} map[string]interface{} "Item not found"
// @Security BearerAuth
// @Router /api/v1/admin/services/items/{id} [delete]
func (h *AdminServiceHandler) DeleteItem(c *gin.Context) {
	if err := h.catalogRepo.DeleteItem(c.Param("id")); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		h.log.WithError(err).Error("failed to delete service item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}

// UpdateSchedule replaces the shop opening hours, keeping the previous pair
// for the single-step revert.
// @Summary Update the shop schedule
// @Tags Admin Services
// @Accept json
// @Produce json
// @Param request body models.UpdateScheduleRequest true "Schedule"
// @Success 200 {object} map[string]interface{} "Updated schedule"
// @Security BearerAuth
// @Router /api/v1/admin/services/schedule [put]
func (h *AdminServiceHandler) UpdateSchedule(c *gin.Context) {
	var req models.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	schedule := &models.ShopSchedule{
		Opens:          req.Opens,
		Closes:         req.Closes,
		PreviousOpens:  models.NewNullString(req.PreviousOpens),
		PreviousCloses: models.NewNullString(req.PreviousCloses),
	}

	if err := h.catalogRepo.UpdateSchedule(schedule); err != nil {
		h.log.WithError(err).Error("failed to update schedule")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Schedule updated", "schedule": schedule})
}

// GetFAQs returns the FAQ list in display order
// @Summary List FAQs
// @Tags Admin Services
// @Produce json
// @Success 200 {object} map[string]interface{} "FAQs"
// @Security BearerAuth
// @Router /api/v1/admin/services/faqs [get]
func (h *AdminServiceHandler) GetFAQs(c *gin.Context) {
	faqs, err := h.catalogRepo.GetFAQs()
	if err != nil {
		h.log.WithError(err).Error("failed to fetch faqs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch FAQs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"faqs": faqs})
}

// SaveFAQ inserts a new FAQ or updates an existing one by id
// @Summary Save an FAQ
// @Tags Admin Services
// @Accept json
// @Produce json
// @Param request body models.SaveFAQRequest true "FAQ"
// @Success 200 {object} map[string]interface{} "Saved FAQ"
// @Security BearerAuth
// @Router /api/v1/admin/services/faqs [post]
func (h *AdminServiceHandler) SaveFAQ(c *gin.Context) {
	var req models.SaveFAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	faq := &models.FAQ{
		ID:       req.ID,
		Question: req.Question,
		Answer:   req.Answer,
	}
	if faq.ID == "" {
		faq.ID = uuid.New().String()
	}

	if err := h.catalogRepo.SaveFAQ(faq); err != nil {
		h.log.WithError(err).Error("failed to save faq")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save FAQ"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "FAQ saved", "faq": faq})
}

// DeleteFAQ removes an FAQ
// @Summary Delete an FAQ
// @Tags Admin Services
// @Produce json
// @Param id path string true "FAQ id"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Failure 404 {object} map[string]interface{} "FAQ not found"
// @Security BearerAuth
// @Router /api/v1/admin/services/faqs/{id} [delete]
func (h *AdminServiceHandler) DeleteFAQ(c *gin.Context) {
	if err := h.catalogRepo.DeleteFAQ(c.Param("id")); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "FAQ not found"})
			return
		}
		h.log.WithError(err).Error("failed to delete faq")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete FAQ"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "FAQ deleted"})
}

// ReorderFAQs rewrites the FAQ sort order to match the given id sequence
// @Summary Reorder FAQs
// @Tags Admin Services
// @Accept json
// @Produce json
// @Param request body models.ReorderFAQsRequest true "Ordered ids"
// @Success 200 {object} map[string]interface{} "Reordered"
// @Security BearerAuth
// @Router /api/v1/admin/services/faqs/reorder [put]
func (h *AdminServiceHandler) ReorderFAQs(c *gin.Context) {
	var req models.ReorderFAQsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.catalogRepo.ReorderFAQs(req.OrderedIDs); err != nil {
		h.log.WithError(err).Error("failed to reorder faqs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder FAQs"})
		return
	}

	faqs, err := h.catalogRepo.GetFAQs()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "FAQs reordered"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "FAQs reordered", "faqs": faqs})
}
