package appointment

import "github.com/ConsultaVida01/consulta-scheduler/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending          Status = "pending"
	StatusPendingPayment   Status = "pending_payment"
	StatusPaymentSubmitted Status = "payment_submitted"
	StatusPaymentRejected  Status = "payment_rejected"
	StatusConfirmed        Status = "confirmed"
	StatusCompleted        Status = "completed"
	StatusCancelled        Status = "cancelled"
)

// Cancelled e Completed são absorventes: nenhuma mutação posterior.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

var transitions = map[Status][]Status{
	StatusPending:          {StatusConfirmed, StatusCancelled},
	StatusPendingPayment:   {StatusPaymentSubmitted, StatusCancelled},
	StatusPaymentSubmitted: {StatusConfirmed, StatusPaymentRejected, StatusCancelled},
	StatusPaymentRejected:  {StatusPaymentSubmitted, StatusCancelled},
	StatusConfirmed:        {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) error {
	if from.Terminal() {
		return httperr.ErrBusiness("invalid_state")
	}
	for _, s := range transitions[from] {
		if s == to {
			return nil
		}
	}
	return httperr.ErrBusiness("invalid_state")
}

// NonTerminalStatuses é o conjunto que ocupa horário na agenda.
func NonTerminalStatuses() []string {
	return []string{
		string(StatusPending),
		string(StatusPendingPayment),
		string(StatusPaymentSubmitted),
		string(StatusPaymentRejected),
		string(StatusConfirmed),
	}
}

// ===============================
// Payment Status
// ===============================

type PaymentStatus string

const (
	PaymentNone      PaymentStatus = "none"
	PaymentPending   PaymentStatus = "pending"
	PaymentSubmitted PaymentStatus = "submitted"
	PaymentPaid      PaymentStatus = "paid"
	PaymentRejected  PaymentStatus = "rejected"
)

// ===============================
// Room Status
// ===============================

type RoomStatus string

const (
	RoomWaiting    RoomStatus = "waiting"
	RoomOpen       RoomStatus = "open"
	RoomInProgress RoomStatus = "in_progress"
	RoomEnded      RoomStatus = "ended"
)
