package appointment

import (
	"context"
	"fmt"

	"github.com/ConsultaVida01/consulta-scheduler/internal/audit"
	domain "github.com/ConsultaVida01/consulta-scheduler/internal/domain/appointment"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
	"github.com/ConsultaVida01/consulta-scheduler/internal/notify"
	"github.com/ConsultaVida01/consulta-scheduler/internal/storage"
	"github.com/ConsultaVida01/consulta-scheduler/internal/timezone"
)

type SubmitReceiptInput struct {
	Ref       domain.Ref
	PatientID uint

	Data        []byte
	ContentType string
}

type SubmitReceipt struct {
	repo     domain.Repository
	receipts storage.ReceiptStore
	notify   *notify.Dispatcher
	audit    *audit.Dispatcher
}

func NewSubmitReceipt(
	repo domain.Repository,
	receipts storage.ReceiptStore,
	notifier *notify.Dispatcher,
	auditor *audit.Dispatcher,
) *SubmitReceipt {
	return &SubmitReceipt{
		repo:     repo,
		receipts: receipts,
		notify:   notifier,
		audit:    auditor,
	}
}

// Execute guarda o comprovante de depósito e move o agendamento para
// revisão do profissional. Falha de upload é fatal: sem comprovante
// armazenado não há transição.
func (uc *SubmitReceipt) Execute(
	ctx context.Context,
	in SubmitReceiptInput,
) (*domain.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, in.Ref)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	if err := authorizeParty(ap, domain.RolePatient, in.PatientID); err != nil {
		return nil, err
	}

	if ap.Status != domain.StatusPendingPayment && ap.Status != domain.StatusPaymentRejected {
		return nil, httperr.ErrBusiness("invalid_payment_state")
	}

	prefix := fmt.Sprintf("receipts/%s/%s", ap.Source, ap.ID)
	receiptRef, err := uc.receipts.Save(ctx, prefix, in.Data, in.ContentType)
	if err != nil {
		return nil, err
	}

	pro, err := uc.repo.GetProfessionalByID(ctx, ap.ProfessionalID)
	if err != nil {
		return nil, httperr.ErrBusiness("professional_not_found")
	}
	now := timezone.NowIn(pro.Timezone)

	if err := domain.SubmitReceipt(ap, receiptRef, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.notify.Dispatch(notify.Event{
		UserRef: notify.UserRef(domain.RoleProfessional, ap.ProfessionalID),
		Type:    "payment_submitted",
		Payload: map[string]any{
			"appointment_id": ap.ID,
			"source":         ap.Source,
			"patient_name":   ap.PatientName,
			"receipt_ref":    ap.ReceiptRef,
		},
	})

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: ap.ProfessionalID,
		Actor:          notify.UserRef(domain.RolePatient, in.PatientID),
		Action:         "payment_submitted",
		Entity:         string(ap.Source),
		EntityRef:      ap.ID,
	})

	return ap, nil
}
