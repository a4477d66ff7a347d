package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/ConsultaVida01/consulta-scheduler/internal/domain/appointment"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httpresp"
	"github.com/ConsultaVida01/consulta-scheduler/internal/models"
	usecase "github.com/ConsultaVida01/consulta-scheduler/internal/usecase/appointment"
)

// ======================================================
// PUBLIC HANDLER — página de agendamento do profissional
// ======================================================

type PublicHandler struct {
	db           *gorm.DB
	availability *usecase.GetAvailability
}

func NewPublicHandler(db *gorm.DB, availability *usecase.GetAvailability) *PublicHandler {
	return &PublicHandler{db: db, availability: availability}
}

type publicProfile struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Specialty string `json:"specialty"`
	Bio       string `json:"bio"`

	SessionDurationMin int   `json:"session_duration_min"`
	PriceCents         int64 `json:"price_cents"`
	DepositPercent     int   `json:"deposit_percent"`

	Services []models.Service `json:"services"`
}

// GET /api/public/professionals/:slug
func (h *PublicHandler) GetProfile(c *gin.Context) {
	pro, ok := h.findBySlug(c)
	if !ok {
		return
	}

	var services []models.Service
	h.db.
		Where("professional_id = ? AND active = ?", pro.ID, true).
		Order("name asc").
		Find(&services)

	httpresp.OK(c, publicProfile{
		ID:                 pro.ID,
		Name:               pro.Name,
		Slug:               pro.Slug,
		Specialty:          pro.Specialty,
		Bio:                pro.Bio,
		SessionDurationMin: pro.SessionDurationMin,
		PriceCents:         pro.PriceCents,
		DepositPercent:     pro.DepositPercent,
		Services:           services,
	})
}

// GET /api/public/professionals/:slug/services
func (h *PublicHandler) ListServices(c *gin.Context) {
	pro, ok := h.findBySlug(c)
	if !ok {
		return
	}

	var services []models.Service
	if err := h.db.
		Where("professional_id = ? AND active = ?", pro.ID, true).
		Order("name asc").
		Find(&services).Error; err != nil {
		httperr.Internal(c, "list_failed", "could not list services")
		return
	}

	httpresp.List(c, services)
}

// GET /api/public/professionals/:slug/availability?date=YYYY-MM-DD&service_id=N
func (h *PublicHandler) GetAvailability(c *gin.Context) {
	pro, ok := h.findBySlug(c)
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "query param date is required")
		return
	}

	input := domain.AvailabilityInput{
		ProfessionalID: pro.ID,
		Date:           date,
	}
	if raw := c.Query("service_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_service_id", "invalid service id")
			return
		}
		sid := uint(id)
		input.ServiceID = &sid
	}

	slots, err := h.availability.Execute(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	httpresp.List(c, slots)
}

func (h *PublicHandler) findBySlug(c *gin.Context) (*models.Professional, bool) {
	var pro models.Professional
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&pro).Error; err != nil {
		httperr.NotFound(c, "professional_not_found", "professional not found")
		return nil, false
	}
	return &pro, true
}
