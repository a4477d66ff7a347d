package appointment

import (
	"context"

	"github.com/ConsultaVida01/consulta-scheduler/internal/audit"
	domain "github.com/ConsultaVida01/consulta-scheduler/internal/domain/appointment"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
	"github.com/ConsultaVida01/consulta-scheduler/internal/infra/cache"
	"github.com/ConsultaVida01/consulta-scheduler/internal/notify"
	"github.com/ConsultaVida01/consulta-scheduler/internal/timezone"
)

type ReviewPaymentInput struct {
	Ref            domain.Ref
	ProfessionalID uint
	Action         domain.ReviewAction
	Reason         string
}

type ReviewPayment struct {
	repo   domain.Repository
	notify *notify.Dispatcher
	audit  *audit.Dispatcher
	slots  *cache.SlotCache
	policy domain.Policy
}

func NewReviewPayment(
	repo domain.Repository,
	notifier *notify.Dispatcher,
	auditor *audit.Dispatcher,
	slots *cache.SlotCache,
	policy domain.Policy,
) *ReviewPayment {
	return &ReviewPayment{
		repo:   repo,
		notify: notifier,
		audit:  auditor,
		slots:  slots,
		policy: policy,
	}
}

// Execute aprova ou rejeita o comprovante enviado. No limite de
// rejeições o cancelamento automático já vem aplicado pelo domínio.
func (uc *ReviewPayment) Execute(
	ctx context.Context,
	in ReviewPaymentInput,
) (*domain.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, in.Ref)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	if ap.ProfessionalID != in.ProfessionalID {
		return nil, httperr.ErrBusiness("unauthorized")
	}

	pro, err := uc.repo.GetProfessionalByID(ctx, ap.ProfessionalID)
	if err != nil {
		return nil, httperr.ErrBusiness("professional_not_found")
	}
	now := timezone.NowIn(pro.Timezone)

	if err := domain.ReviewPayment(ap, in.Action, now, uc.policy); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	if ap.Status == domain.StatusCancelled {
		uc.slots.Invalidate(ctx, ap.ProfessionalID, ap.Date)
	}

	if ap.PatientID != nil {
		eventType := "payment_approved"
		payload := map[string]any{
			"appointment_id": ap.ID,
			"source":         ap.Source,
		}
		if in.Action == domain.ReviewReject {
			eventType = "payment_rejected"
			payload["reason"] = in.Reason
			payload["cancelled"] = ap.Status == domain.StatusCancelled
		}
		uc.notify.Dispatch(notify.Event{
			UserRef: notify.UserRef(domain.RolePatient, *ap.PatientID),
			Type:    eventType,
			Payload: payload,
		})
	}

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: ap.ProfessionalID,
		Actor:          notify.UserRef(domain.RoleProfessional, in.ProfessionalID),
		Action:         "payment_reviewed",
		Entity:         string(ap.Source),
		EntityRef:      ap.ID,
		Metadata: map[string]any{
			"action":     in.Action,
			"rejections": ap.PaymentRejections,
		},
	})

	return ap, nil
}
