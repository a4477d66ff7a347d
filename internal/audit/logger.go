package audit

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/ConsultaVida01/consulta-scheduler/internal/models"
)

type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(
	professionalID uint,
	actor string,
	action string,
	entity string,
	entityRef string,
	metadata any,
) error {

	var metaJSON string
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metaJSON = string(b)
		}
	}

	rec := models.AuditLog{
		ProfessionalID: professionalID,
		Actor:          actor,
		Action:         action,
		Entity:         entity,
		EntityRef:      entityRef,
		Metadata:       metaJSON,
	}

	return l.db.Create(&rec).Error
}
