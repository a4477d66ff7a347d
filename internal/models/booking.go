package models

import "time"

// Booking é o registro criado pelo paciente na página pública.
// Chave UUID — espaço de ids disjunto do Appointment (serial), então as
// duas coleções nunca colidem.
type Booking struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	PatientID uint    `gorm:"index" json:"patient_id"`
	Patient   Patient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	ProfessionalID uint         `gorm:"index" json:"professional_id"`
	Professional   Professional `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	ServiceID *uint    `json:"service_id"`
	Service   *Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	Date        string `gorm:"size:10;index" json:"date"`
	Time        string `gorm:"size:5" json:"time"`
	DurationMin int    `json:"duration_min"`

	PriceCents        int64  `json:"price_cents"`
	DepositPercent    int    `json:"deposit_percent"`
	PaymentStatus     string `gorm:"size:20;default:'none'" json:"payment_status"`
	ReceiptRef        string `gorm:"size:255" json:"receipt_ref"`
	PaymentRejections int    `json:"payment_rejections"`

	Status string `gorm:"size:24;default:'pending'" json:"status"`

	CancelledAt        *time.Time `json:"cancelled_at"`
	CancelledBy        string     `gorm:"size:20" json:"cancelled_by"`
	CancellationReason string     `gorm:"size:255" json:"cancellation_reason"`

	RescheduleHistory RescheduleHistory `gorm:"serializer:json" json:"reschedule_history"`

	MeetingRoomID string `gorm:"size:36" json:"meeting_room_id"`
	RoomStatus    string `gorm:"size:16;default:'waiting'" json:"room_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
