package models

import "time"

// Registro de notificação enfileirada; a entrega em si (push, e-mail)
// é responsabilidade de um serviço externo que consome esta tabela.
type NotificationLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserRef string `gorm:"size:50;index" json:"user_ref"`
	Type    string `gorm:"size:50;not null" json:"type"`
	Payload string `gorm:"type:text" json:"payload"`

	CreatedAt time.Time `json:"created_at"`
}
