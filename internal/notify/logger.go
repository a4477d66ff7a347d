package notify

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/ConsultaVida01/consulta-scheduler/internal/models"
)

// Logger registra o evento na tabela de notificações; o canal de
// entrega real (push, e-mail) é externo e consome essa tabela.
type Logger struct {
	db *gorm.DB
}

func NewLogger(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Notify(ctx context.Context, ev Event) error {
	var payloadJSON string
	if ev.Payload != nil {
		if b, err := json.Marshal(ev.Payload); err == nil {
			payloadJSON = string(b)
		}
	}

	rec := models.NotificationLog{
		UserRef: ev.UserRef,
		Type:    ev.Type,
		Payload: payloadJSON,
	}

	return l.db.WithContext(ctx).Create(&rec).Error
}

var _ Notifier = (*Logger)(nil)
