package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httpresp"
	"github.com/ConsultaVida01/consulta-scheduler/internal/infra/cache"
	"github.com/ConsultaVida01/consulta-scheduler/internal/models"
	"github.com/ConsultaVida01/consulta-scheduler/internal/timezone"
)

// ======================================================
// AVAILABILITY HANDLER — grade semanal do profissional
// ======================================================

type AvailabilityHandler struct {
	db    *gorm.DB
	slots *cache.SlotCache
}

func NewAvailabilityHandler(db *gorm.DB, slots *cache.SlotCache) *AvailabilityHandler {
	return &AvailabilityHandler{db: db, slots: slots}
}

type availabilitySettings struct {
	Timezone           string                    `json:"timezone"`
	SessionDurationMin int                       `json:"session_duration_min"`
	BufferMin          int                       `json:"buffer_min"`
	DepositPercent     int                       `json:"deposit_percent"`
	Availability       models.WeeklyAvailability `json:"availability"`
}

// GET /api/me/availability
func (h *AvailabilityHandler) Get(c *gin.Context) {
	var pro models.Professional
	if err := h.db.First(&pro, currentUserID(c)).Error; err != nil {
		httperr.NotFound(c, "professional_not_found", "professional not found")
		return
	}

	httpresp.OK(c, availabilitySettings{
		Timezone:           pro.Timezone,
		SessionDurationMin: pro.SessionDurationMin,
		BufferMin:          pro.BufferMin,
		DepositPercent:     pro.DepositPercent,
		Availability:       pro.Availability,
	})
}

// PUT /api/me/availability
func (h *AvailabilityHandler) Update(c *gin.Context) {
	var in availabilitySettings
	if err := c.ShouldBindJSON(&in); err != nil {
		httperr.BadRequest(c, "invalid_payload", err.Error())
		return
	}

	if in.Timezone != "" && !timezone.IsValid(in.Timezone) {
		httperr.BadRequest(c, "invalid_timezone", "unknown IANA timezone")
		return
	}
	if in.SessionDurationMin < 0 || in.BufferMin < 0 {
		httperr.BadRequest(c, "invalid_duration", "durations must be non-negative")
		return
	}
	if in.DepositPercent < 0 || in.DepositPercent > 100 {
		httperr.BadRequest(c, "invalid_deposit", "deposit_percent must be 0..100")
		return
	}

	for weekday, day := range in.Availability {
		if weekday < 0 || weekday > 6 {
			httperr.BadRequest(c, "invalid_weekday", "weekday must be 0 (sunday) .. 6 (saturday)")
			return
		}
		for _, r := range day.Ranges {
			if r.StartMin < 0 || r.EndMin > 24*60 || r.StartMin >= r.EndMin {
				httperr.BadRequest(c, "invalid_range", "range must satisfy 0 <= start < end <= 1440")
				return
			}
		}
	}

	var pro models.Professional
	if err := h.db.First(&pro, currentUserID(c)).Error; err != nil {
		httperr.NotFound(c, "professional_not_found", "professional not found")
		return
	}

	if in.Timezone != "" {
		pro.Timezone = in.Timezone
	}
	if in.SessionDurationMin > 0 {
		pro.SessionDurationMin = in.SessionDurationMin
	}
	pro.BufferMin = in.BufferMin
	pro.DepositPercent = in.DepositPercent
	if in.Availability != nil {
		pro.Availability = in.Availability
	}

	if err := h.db.Save(&pro).Error; err != nil {
		httperr.Internal(c, "update_failed", "could not persist availability")
		return
	}

	// grade mudou: slots cacheados de qualquer data estão suspeitos
	h.slots.InvalidateAll(c.Request.Context(), pro.ID)

	httpresp.OK(c, gin.H{"message": "availability updated"})
}
