package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httpresp"
	"github.com/ConsultaVida01/consulta-scheduler/internal/models"
)

// ======================================================
// SERVICE HANDLER — catálogo de serviços do profissional
// ======================================================

type ServiceHandler struct {
	db *gorm.DB
}

func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{db: db}
}

type serviceInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	DurationMin int    `json:"duration_min"`
	PriceCents  int64  `json:"price_cents"`
	Active      *bool  `json:"active"`
}

// GET /api/me/services
func (h *ServiceHandler) List(c *gin.Context) {
	var services []models.Service
	if err := h.db.
		Where("professional_id = ?", currentUserID(c)).
		Order("name asc").
		Find(&services).Error; err != nil {
		httperr.Internal(c, "list_failed", "could not list services")
		return
	}

	httpresp.List(c, services)
}

// POST /api/me/services
func (h *ServiceHandler) Create(c *gin.Context) {
	var in serviceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httperr.BadRequest(c, "invalid_payload", err.Error())
		return
	}
	if in.DurationMin < 0 || in.PriceCents < 0 {
		httperr.BadRequest(c, "invalid_values", "duration and price must be non-negative")
		return
	}

	svc := models.Service{
		ProfessionalID: currentUserID(c),
		Name:           in.Name,
		Description:    in.Description,
		DurationMin:    in.DurationMin,
		PriceCents:     in.PriceCents,
		Active:         true,
	}
	if in.Active != nil {
		svc.Active = *in.Active
	}

	if err := h.db.Create(&svc).Error; err != nil {
		httperr.Internal(c, "create_failed", "could not create service")
		return
	}

	c.JSON(201, svc)
}

// PUT /api/me/services/:id
func (h *ServiceHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "invalid service id")
		return
	}

	var in serviceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httperr.BadRequest(c, "invalid_payload", err.Error())
		return
	}

	var svc models.Service
	if err := h.db.
		Where("id = ? AND professional_id = ?", id, currentUserID(c)).
		First(&svc).Error; err != nil {
		httperr.NotFound(c, "service_not_found", "service not found")
		return
	}

	svc.Name = in.Name
	svc.Description = in.Description
	svc.DurationMin = in.DurationMin
	svc.PriceCents = in.PriceCents
	if in.Active != nil {
		svc.Active = *in.Active
	}

	if err := h.db.Save(&svc).Error; err != nil {
		httperr.Internal(c, "update_failed", "could not update service")
		return
	}

	httpresp.OK(c, svc)
}

// DELETE /api/me/services/:id
func (h *ServiceHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "invalid service id")
		return
	}

	res := h.db.
		Where("id = ? AND professional_id = ?", id, currentUserID(c)).
		Delete(&models.Service{})
	if res.Error != nil {
		httperr.Internal(c, "delete_failed", "could not delete service")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "service_not_found", "service not found")
		return
	}

	httpresp.OK(c, gin.H{"message": "service deleted"})
}
