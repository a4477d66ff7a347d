package models

import "time"

type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ProfessionalID uint   `gorm:"index" json:"professional_id"`
	Actor          string `gorm:"size:50" json:"actor"`
	Action         string `gorm:"size:50;not null" json:"action"`

	Entity    string `gorm:"size:50" json:"entity"`
	EntityRef string `gorm:"size:64" json:"entity_ref"`
	Metadata  string `gorm:"type:text" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
}
