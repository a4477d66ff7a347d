package dto

import "time"

type AppointmentListDTO struct {
	ID     string `json:"id"`
	Source string `json:"source"`

	Date        string `json:"date"`
	Time        string `json:"time"`
	DurationMin int    `json:"duration_min"`

	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	RoomStatus    string `json:"room_status"`

	PatientName      string `json:"patient_name"`
	ProfessionalName string `json:"professional_name"`
	ServiceName      string `json:"service_name"`

	PriceCents int64 `json:"price_cents"`

	CreatedAt time.Time `json:"created_at"`
}
