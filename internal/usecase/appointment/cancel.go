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

type CancelInput struct {
	Ref    domain.Ref
	Role   string // professional | patient
	UserID uint
	Reason string
}

type CancelAppointment struct {
	repo   domain.Repository
	notify *notify.Dispatcher
	audit  *audit.Dispatcher
	slots  *cache.SlotCache
	policy domain.Policy
}

func NewCancelAppointment(
	repo domain.Repository,
	notifier *notify.Dispatcher,
	auditor *audit.Dispatcher,
	slots *cache.SlotCache,
	policy domain.Policy,
) *CancelAppointment {
	return &CancelAppointment{
		repo:   repo,
		notify: notifier,
		audit:  auditor,
		slots:  slots,
		policy: policy,
	}
}

func (uc *CancelAppointment) Execute(
	ctx context.Context,
	in CancelInput,
) (*domain.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, in.Ref)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	if err := authorizeParty(ap, in.Role, in.UserID); err != nil {
		return nil, err
	}

	pro, err := uc.repo.GetProfessionalByID(ctx, ap.ProfessionalID)
	if err != nil {
		return nil, httperr.ErrBusiness("professional_not_found")
	}

	loc := timezone.Location(pro.Timezone)
	now := timezone.NowIn(pro.Timezone)

	if err := domain.Cancel(ap, in.Role, in.Reason, now, loc, uc.policy); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.slots.Invalidate(ctx, ap.ProfessionalID, ap.Date)
	notifyCounterpart(uc.notify, ap, in.Role, "appointment_cancelled", map[string]any{
		"appointment_id": ap.ID,
		"source":         ap.Source,
		"date":           ap.Date,
		"time":           ap.Time,
		"cancelled_by":   ap.CancelledBy,
		"reason":         ap.CancellationReason,
	})

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: ap.ProfessionalID,
		Actor:          notify.UserRef(in.Role, in.UserID),
		Action:         "appointment_cancelled",
		Entity:         string(ap.Source),
		EntityRef:      ap.ID,
		Metadata:       map[string]any{"reason": in.Reason},
	})

	return ap, nil
}

// authorizeParty garante que o chamador é uma das partes do agendamento.
func authorizeParty(ap *domain.Appointment, role string, userID uint) error {
	switch role {
	case domain.RoleProfessional:
		if ap.ProfessionalID == userID {
			return nil
		}
	case domain.RolePatient:
		if ap.PatientID != nil && *ap.PatientID == userID {
			return nil
		}
	}
	return httperr.ErrBusiness("unauthorized")
}

// notifyCounterpart avisa a outra parte da transição — nunca quem agiu.
func notifyCounterpart(
	d *notify.Dispatcher,
	ap *domain.Appointment,
	actorRole string,
	eventType string,
	payload map[string]any,
) {
	switch actorRole {
	case domain.RolePatient:
		d.Dispatch(notify.Event{
			UserRef: notify.UserRef(domain.RoleProfessional, ap.ProfessionalID),
			Type:    eventType,
			Payload: payload,
		})
	case domain.RoleProfessional:
		if ap.PatientID != nil {
			d.Dispatch(notify.Event{
				UserRef: notify.UserRef(domain.RolePatient, *ap.PatientID),
				Type:    eventType,
				Payload: payload,
			})
		}
	}
}
