package room

import (
	"context"

	"github.com/ConsultaVida01/consulta-scheduler/internal/audit"
	domain "github.com/ConsultaVida01/consulta-scheduler/internal/domain/appointment"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
	"github.com/ConsultaVida01/consulta-scheduler/internal/models"
	"github.com/ConsultaVida01/consulta-scheduler/internal/notify"
	"github.com/ConsultaVida01/consulta-scheduler/internal/timezone"
)

// Controller orquestra a sala de vídeo: abrir, entrar, encerrar.
// O profissional controla abertura e encerramento; o paciente só entra.
type Controller struct {
	repo   domain.Repository
	notify *notify.Dispatcher
	audit  *audit.Dispatcher
	policy domain.Policy
}

func NewController(
	repo domain.Repository,
	notifier *notify.Dispatcher,
	auditor *audit.Dispatcher,
	policy domain.Policy,
) *Controller {
	return &Controller{
		repo:   repo,
		notify: notifier,
		audit:  auditor,
		policy: policy,
	}
}

type JoinOutput struct {
	MeetingRoomID string            `json:"meeting_room_id"`
	RoomStatus    domain.RoomStatus `json:"room_status"`
}

func (c *Controller) Open(
	ctx context.Context,
	ref domain.Ref,
	professionalID uint,
) (*domain.Appointment, error) {

	ap, pro, err := c.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if ap.ProfessionalID != professionalID {
		return nil, httperr.ErrBusiness("unauthorized")
	}

	loc := timezone.Location(pro.Timezone)
	now := timezone.NowIn(pro.Timezone)

	if err := domain.OpenRoom(ap, now, loc, c.policy); err != nil {
		return nil, err
	}

	if err := c.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	if ap.PatientID != nil {
		c.notify.Dispatch(notify.Event{
			UserRef: notify.UserRef(domain.RolePatient, *ap.PatientID),
			Type:    "room_open",
			Payload: map[string]any{
				"appointment_id":  ap.ID,
				"source":          ap.Source,
				"meeting_room_id": ap.MeetingRoomID,
			},
		})
	}

	c.audit.Dispatch(audit.Event{
		ProfessionalID: ap.ProfessionalID,
		Actor:          notify.UserRef(domain.RoleProfessional, professionalID),
		Action:         "room_opened",
		Entity:         string(ap.Source),
		EntityRef:      ap.ID,
	})

	return ap, nil
}

func (c *Controller) Join(
	ctx context.Context,
	ref domain.Ref,
	role string,
	userID uint,
) (*JoinOutput, error) {

	ap, pro, err := c.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := authorizeParty(ap, role, userID); err != nil {
		return nil, err
	}

	loc := timezone.Location(pro.Timezone)
	now := timezone.NowIn(pro.Timezone)

	before := ap.RoomStatus
	if err := domain.JoinRoom(ap, role, now, loc, c.policy); err != nil {
		return nil, err
	}

	if ap.RoomStatus != before {
		if err := c.repo.UpdateAppointment(ctx, ap); err != nil {
			return nil, err
		}
	}

	return &JoinOutput{
		MeetingRoomID: ap.MeetingRoomID,
		RoomStatus:    ap.RoomStatus,
	}, nil
}

func (c *Controller) End(
	ctx context.Context,
	ref domain.Ref,
	professionalID uint,
) (*domain.Appointment, error) {

	ap, pro, err := c.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if ap.ProfessionalID != professionalID {
		return nil, httperr.ErrBusiness("unauthorized")
	}

	now := timezone.NowIn(pro.Timezone)

	if err := domain.EndRoom(ap, now); err != nil {
		return nil, err
	}

	if err := c.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	if ap.PatientID != nil {
		c.notify.Dispatch(notify.Event{
			UserRef: notify.UserRef(domain.RolePatient, *ap.PatientID),
			Type:    "session_completed",
			Payload: map[string]any{
				"appointment_id": ap.ID,
				"source":         ap.Source,
			},
		})
	}

	c.audit.Dispatch(audit.Event{
		ProfessionalID: ap.ProfessionalID,
		Actor:          notify.UserRef(domain.RoleProfessional, professionalID),
		Action:         "room_ended",
		Entity:         string(ap.Source),
		EntityRef:      ap.ID,
	})

	return ap, nil
}

func (c *Controller) load(
	ctx context.Context,
	ref domain.Ref,
) (*domain.Appointment, *models.Professional, error) {

	ap, err := c.repo.GetAppointment(ctx, ref)
	if err != nil {
		return nil, nil, httperr.ErrBusiness("appointment_not_found")
	}

	pro, err := c.repo.GetProfessionalByID(ctx, ap.ProfessionalID)
	if err != nil {
		return nil, nil, httperr.ErrBusiness("professional_not_found")
	}
	return ap, pro, nil
}

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
