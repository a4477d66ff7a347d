package models

import "time"

// Serviço opcional do profissional; na ausência valem a duração e o
// preço padrão do perfil.
type Service struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	ProfessionalID uint `json:"professional_id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	DurationMin int    `json:"duration_min"`
	PriceCents  int64  `json:"price_cents"`
	Active      bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
