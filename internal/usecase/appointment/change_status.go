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

type ChangeStatusInput struct {
	Ref            domain.Ref
	ProfessionalID uint
	To             domain.Status
}

type ChangeStatus struct {
	repo   domain.Repository
	notify *notify.Dispatcher
	audit  *audit.Dispatcher
	slots  *cache.SlotCache
}

func NewChangeStatus(
	repo domain.Repository,
	notifier *notify.Dispatcher,
	auditor *audit.Dispatcher,
	slots *cache.SlotCache,
) *ChangeStatus {
	return &ChangeStatus{
		repo:   repo,
		notify: notifier,
		audit:  auditor,
		slots:  slots,
	}
}

// Execute aplica uma transição direta pedida pelo profissional
// (confirmar, concluir). Cancelamento passa pelo fluxo próprio, que
// valida a janela de antecedência.
func (uc *ChangeStatus) Execute(
	ctx context.Context,
	in ChangeStatusInput,
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

	if err := domain.ChangeStatus(ap, in.To, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	if in.To == domain.StatusCancelled {
		uc.slots.Invalidate(ctx, ap.ProfessionalID, ap.Date)
	}

	if ap.PatientID != nil {
		switch in.To {
		case domain.StatusConfirmed:
			uc.notify.Dispatch(notify.Event{
				UserRef: notify.UserRef(domain.RolePatient, *ap.PatientID),
				Type:    "appointment_confirmed",
				Payload: map[string]any{
					"appointment_id": ap.ID,
					"source":         ap.Source,
					"date":           ap.Date,
					"time":           ap.Time,
				},
			})
		case domain.StatusCancelled:
			uc.notify.Dispatch(notify.Event{
				UserRef: notify.UserRef(domain.RolePatient, *ap.PatientID),
				Type:    "appointment_cancelled",
				Payload: map[string]any{
					"appointment_id": ap.ID,
					"source":         ap.Source,
				},
			})
		}
	}

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: ap.ProfessionalID,
		Actor:          notify.UserRef(domain.RoleProfessional, in.ProfessionalID),
		Action:         "status_changed",
		Entity:         string(ap.Source),
		EntityRef:      ap.ID,
		Metadata:       map[string]any{"to": in.To},
	})

	return ap, nil
}
