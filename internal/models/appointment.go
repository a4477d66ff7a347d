package models

import "time"

type RescheduleEntry struct {
	OldDate string    `json:"old_date"`
	OldTime string    `json:"old_time"`
	NewDate string    `json:"new_date"`
	NewTime string    `json:"new_time"`
	At      time.Time `json:"at"`
}

// Histórico append-only; data/hora atuais sempre refletem a última entrada.
type RescheduleHistory []RescheduleEntry

// Appointment é o registro criado pelo profissional (entrada manual).
// Pacientes fora da plataforma podem não ter PatientID — nesse caso os
// dados de contato ficam inline.
type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ProfessionalID uint         `gorm:"index" json:"professional_id"`
	Professional   Professional `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	PatientID    *uint    `json:"patient_id"`
	Patient      *Patient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	PatientName  string   `gorm:"size:100" json:"patient_name"`
	PatientEmail string   `gorm:"size:100" json:"patient_email"`
	PatientPhone string   `gorm:"size:20" json:"patient_phone"`

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
