package appointment

import (
	"time"

	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
	"github.com/ConsultaVida01/consulta-scheduler/internal/models"
)

// ===============================
// Unified view (dual source)
// ===============================

// Source identifica qual coleção originou o registro. É discriminante,
// nunca subtipo: as duas fontes compartilham o mesmo shape normalizado.
type Source string

const (
	SourceProfessional Source = "professional"
	SourcePatient      Source = "patient"
)

// Ref é a chave global de um agendamento: (source, id).
type Ref struct {
	Source Source `json:"source"`
	ID     string `json:"id"`
}

// Appointment é a visão normalizada sobre as duas coleções de origem.
type Appointment struct {
	ID     string `json:"id"`
	Source Source `json:"source"`

	ProfessionalID   uint   `json:"professional_id"`
	ProfessionalName string `json:"professional_name"`

	PatientID    *uint  `json:"patient_id"`
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`

	ServiceID   *uint  `json:"service_id"`
	ServiceName string `json:"service_name"`

	Date        string `json:"date"` // YYYY-MM-DD, data civil no fuso do profissional
	Time        string `json:"time"` // HH:MM
	DurationMin int    `json:"duration_min"`

	PriceCents        int64         `json:"price_cents"`
	DepositPercent    int           `json:"deposit_percent"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	ReceiptRef        string        `json:"receipt_ref"`
	PaymentRejections int           `json:"payment_rejections"`

	Status Status `json:"status"`

	CancelledAt        *time.Time `json:"cancelled_at"`
	CancelledBy        string     `json:"cancelled_by"`
	CancellationReason string     `json:"cancellation_reason"`

	RescheduleHistory models.RescheduleHistory `json:"reschedule_history"`

	MeetingRoomID string     `json:"meeting_room_id"`
	RoomStatus    RoomStatus `json:"room_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ap *Appointment) Ref() Ref {
	return Ref{Source: ap.Source, ID: ap.ID}
}

// StartsAt resolve data+hora civis no fuso comercial do profissional.
func (ap *Appointment) StartsAt(loc *time.Location) time.Time {
	t, _ := time.ParseInLocation("2006-01-02 15:04", ap.Date+" "+ap.Time, loc)
	return t
}

// StartMin retorna o horário de início em minutos desde a meia-noite.
func (ap *Appointment) StartMin() int {
	m, _ := ParseHM(ap.Time)
	return m
}

// ===============================
// Policy
// ===============================

const (
	RolePatient      = "patient"
	RoleProfessional = "professional"

	CancelledByPatient      = RolePatient
	CancelledByProfessional = RoleProfessional
	CancelledBySystem       = "system"
)

type Policy struct {
	CancelNoticeHours     int
	PaymentRejectionLimit int
	RoomOpenLeadMinutes   int
}

func DefaultPolicy() Policy {
	return Policy{
		CancelNoticeHours:     24,
		PaymentRejectionLimit: 2,
		RoomOpenLeadMinutes:   15,
	}
}

// ===============================
// Domain Actions
// ===============================

// Cancel aplica a política de cancelamento: permitido apenas com
// antecedência mínima. Fora da janela retorna violação de política com
// as horas restantes, não um erro genérico.
func Cancel(ap *Appointment, by string, reason string, now time.Time, loc *time.Location, pol Policy) error {
	if ap.Status.Terminal() {
		return httperr.ErrBusiness("invalid_state")
	}

	start := ap.StartsAt(loc)
	notice := time.Duration(pol.CancelNoticeHours) * time.Hour

	if !now.Before(start) || start.Sub(now) < notice {
		remaining := start.Sub(now).Hours()
		if remaining < 0 {
			remaining = 0
		}
		return httperr.ErrPolicy("cancellation_window", map[string]any{
			"hours_remaining": remaining,
			"required_hours":  pol.CancelNoticeHours,
		})
	}

	ap.Status = StatusCancelled
	ap.CancelledAt = &now
	ap.CancelledBy = by
	ap.CancellationReason = reason
	ap.UpdatedAt = now
	return nil
}

// Reschedule move data/hora e registra a entrada no histórico.
// Não altera o status: reagendar não reconfirma nem desconfirma.
func Reschedule(ap *Appointment, newDate, newTime string, now time.Time) error {
	if ap.Status.Terminal() {
		return httperr.ErrBusiness("invalid_state")
	}

	ap.RescheduleHistory = append(ap.RescheduleHistory, models.RescheduleEntry{
		OldDate: ap.Date,
		OldTime: ap.Time,
		NewDate: newDate,
		NewTime: newTime,
		At:      now,
	})
	ap.Date = newDate
	ap.Time = newTime
	ap.UpdatedAt = now
	return nil
}

// SubmitReceipt registra o comprovante de depósito enviado pelo
// paciente — primeiro envio ou reenvio após rejeição.
func SubmitReceipt(ap *Appointment, receiptRef string, now time.Time) error {
	if ap.Status.Terminal() {
		return httperr.ErrBusiness("invalid_state")
	}
	if ap.Status != StatusPendingPayment && ap.Status != StatusPaymentRejected {
		return httperr.ErrBusiness("invalid_payment_state")
	}

	ap.ReceiptRef = receiptRef
	ap.PaymentStatus = PaymentSubmitted
	ap.Status = StatusPaymentSubmitted
	ap.UpdatedAt = now
	return nil
}

type ReviewAction string

const (
	ReviewApprove ReviewAction = "approve"
	ReviewReject  ReviewAction = "reject"
)

// ReviewPayment aprova ou rejeita o comprovante. No limite de rejeições
// o agendamento é cancelado automaticamente, sem chamada manual.
func ReviewPayment(ap *Appointment, action ReviewAction, now time.Time, pol Policy) error {
	if ap.Status.Terminal() {
		return httperr.ErrBusiness("invalid_state")
	}
	if ap.PaymentStatus != PaymentSubmitted {
		return httperr.ErrBusiness("invalid_payment_state")
	}

	switch action {
	case ReviewApprove:
		ap.PaymentStatus = PaymentPaid
		ap.Status = StatusConfirmed

	case ReviewReject:
		ap.PaymentRejections++
		ap.PaymentStatus = PaymentRejected
		if ap.PaymentRejections >= pol.PaymentRejectionLimit {
			ap.Status = StatusCancelled
			ap.CancelledAt = &now
			ap.CancelledBy = CancelledBySystem
			ap.CancellationReason = "payment_rejection_limit"
		} else {
			// paciente pode reenviar o comprovante
			ap.Status = StatusPaymentRejected
		}

	default:
		return httperr.ErrBusiness("invalid_review_action")
	}

	ap.UpdatedAt = now
	return nil
}

// ChangeStatus valida a transição contra o grafo de estados.
func ChangeStatus(ap *Appointment, to Status, now time.Time) error {
	if err := CanTransition(ap.Status, to); err != nil {
		return err
	}

	ap.Status = to
	if to == StatusCancelled && ap.CancelledAt == nil {
		ap.CancelledAt = &now
	}
	ap.UpdatedAt = now
	return nil
}

func Complete(ap *Appointment, now time.Time) error {
	return ChangeStatus(ap, StatusCompleted, now)
}
