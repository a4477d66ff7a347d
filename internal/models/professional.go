package models

import "time"

// Faixa de atendimento em minutos desde a meia-noite (start < end).
type TimeRange struct {
	StartMin int `json:"start_min"`
	EndMin   int `json:"end_min"`
}

type DayAvailability struct {
	Enabled bool        `json:"enabled"`
	Ranges  []TimeRange `json:"ranges"`
}

// WeeklyAvailability mapeia weekday (0=domingo ... 6=sábado) para as
// faixas do dia. Sub-documento do profissional, sem ciclo de vida próprio.
type WeeklyAvailability map[int]DayAvailability

type Professional struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name      string `gorm:"size:100;not null" json:"name"`
	Slug      string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Email     string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone     string `gorm:"size:20" json:"phone"`
	Specialty string `gorm:"size:100" json:"specialty"`
	Bio       string `gorm:"size:500" json:"bio"`

	Timezone string `gorm:"size:50" json:"timezone"`

	SessionDurationMin int   `gorm:"default:50" json:"session_duration_min"`
	BufferMin          int   `gorm:"default:10" json:"buffer_min"`
	PriceCents         int64 `json:"price_cents"`
	DepositPercent     int   `gorm:"default:0" json:"deposit_percent"`

	Availability WeeklyAvailability `gorm:"serializer:json" json:"availability"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
