package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/ConsultaVida01/consulta-scheduler/internal/domain/appointment"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
	"github.com/ConsultaVida01/consulta-scheduler/internal/middleware"
)

// refFromPath monta a chave global (source, id) a partir da rota
// /:source/:id. Source inválido nunca chega ao repositório.
func refFromPath(c *gin.Context) (domain.Ref, bool) {
	source := domain.Source(c.Param("source"))
	id := c.Param("id")

	if source != domain.SourceProfessional && source != domain.SourcePatient {
		httperr.BadRequest(c, "invalid_source", "source must be professional or patient")
		return domain.Ref{}, false
	}
	if id == "" {
		httperr.BadRequest(c, "invalid_id", "missing appointment id")
		return domain.Ref{}, false
	}

	return domain.Ref{Source: source, ID: id}, true
}

func currentUserID(c *gin.Context) uint {
	return c.GetUint(middleware.ContextUserID)
}

func currentRole(c *gin.Context) string {
	return c.GetString(middleware.ContextUserRole)
}

// handleError aplica o mapeamento de erros de negócio; o resto é 500.
func handleError(c *gin.Context, err error) {
	if httperr.Handle(c, err) {
		return
	}
	httperr.Internal(c, "internal_error", "unexpected error")
}
