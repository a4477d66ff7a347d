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
// AUDIT HANDLER — trilha de mutações da agenda
// ======================================================

type AuditHandler struct {
	db *gorm.DB
}

func NewAuditHandler(db *gorm.DB) *AuditHandler {
	return &AuditHandler{db: db}
}

// GET /api/me/audit?limit=N
func (h *AuditHandler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			httperr.BadRequest(c, "invalid_limit", "limit must be 1..500")
			return
		}
		limit = n
	}

	var entries []models.AuditLog
	if err := h.db.
		Where("professional_id = ?", currentUserID(c)).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error; err != nil {
		httperr.Internal(c, "list_failed", "could not list audit entries")
		return
	}

	httpresp.List(c, entries)
}
