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

type RescheduleInput struct {
	Ref            domain.Ref
	ProfessionalID uint
	NewDate        string
	NewTime        string
}

type RescheduleAppointment struct {
	repo   domain.Repository
	notify *notify.Dispatcher
	audit  *audit.Dispatcher
	slots  *cache.SlotCache
}

func NewRescheduleAppointment(
	repo domain.Repository,
	notifier *notify.Dispatcher,
	auditor *audit.Dispatcher,
	slots *cache.SlotCache,
) *RescheduleAppointment {
	return &RescheduleAppointment{
		repo:   repo,
		notify: notifier,
		audit:  auditor,
		slots:  slots,
	}
}

// Execute move o agendamento para nova data/hora. Apenas o profissional
// dono reagenda; reagendamento rejeitado por conflito não persiste nada.
func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	in RescheduleInput,
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

	if _, _, err := validateSchedule(pro, in.NewDate, in.NewTime); err != nil {
		return nil, err
	}

	oldDate := ap.Date
	now := timezone.NowIn(pro.Timezone)

	if err := domain.Reschedule(ap, in.NewDate, in.NewTime, now); err != nil {
		return nil, err
	}

	// conflito é re-verificado na transação; em caso de choque o
	// registro em banco permanece intocado
	if err := uc.repo.RescheduleAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.slots.Invalidate(ctx, ap.ProfessionalID, oldDate, ap.Date)

	payload := map[string]any{
		"appointment_id": ap.ID,
		"source":         ap.Source,
		"old_date":       oldDate,
		"date":           ap.Date,
		"time":           ap.Time,
	}

	// reagendar muda o compromisso das duas partes: ambas são avisadas
	uc.notify.Dispatch(notify.Event{
		UserRef: notify.UserRef(domain.RoleProfessional, ap.ProfessionalID),
		Type:    "appointment_rescheduled",
		Payload: payload,
	})
	if ap.PatientID != nil {
		uc.notify.Dispatch(notify.Event{
			UserRef: notify.UserRef(domain.RolePatient, *ap.PatientID),
			Type:    "appointment_rescheduled",
			Payload: payload,
		})
	}

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: ap.ProfessionalID,
		Actor:          notify.UserRef(domain.RoleProfessional, in.ProfessionalID),
		Action:         "appointment_rescheduled",
		Entity:         string(ap.Source),
		EntityRef:      ap.ID,
		Metadata:       payload,
	})

	return ap, nil
}
