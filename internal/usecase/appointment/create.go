package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ConsultaVida01/consulta-scheduler/internal/audit"
	domain "github.com/ConsultaVida01/consulta-scheduler/internal/domain/appointment"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
	"github.com/ConsultaVida01/consulta-scheduler/internal/infra/cache"
	"github.com/ConsultaVida01/consulta-scheduler/internal/models"
	"github.com/ConsultaVida01/consulta-scheduler/internal/notify"
	"github.com/ConsultaVida01/consulta-scheduler/internal/timezone"
	"github.com/ConsultaVida01/consulta-scheduler/internal/validators"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	PatientID      uint
	ProfessionalID uint
	ServiceID      *uint

	Date string
	Time string
}

type CreateManualInput struct {
	ProfessionalID uint

	// paciente da plataforma OU contato avulso
	PatientID    *uint
	PatientName  string
	PatientEmail string
	PatientPhone string

	ServiceID *uint

	Date string
	Time string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo   domain.Repository
	notify *notify.Dispatcher
	audit  *audit.Dispatcher
	slots  *cache.SlotCache
}

func NewCreateAppointment(
	repo domain.Repository,
	notifier *notify.Dispatcher,
	auditor *audit.Dispatcher,
	slots *cache.SlotCache,
) *CreateAppointment {
	return &CreateAppointment{
		repo:   repo,
		notify: notifier,
		audit:  auditor,
		slots:  slots,
	}
}

// ======================================================
// EXECUTE — reserva pelo paciente (fonte patient)
// ======================================================

func (uc *CreateAppointment) ExecuteBooking(
	ctx context.Context,
	in CreateBookingInput,
) (*domain.Appointment, error) {

	pro, err := uc.repo.GetProfessionalByID(ctx, in.ProfessionalID)
	if err != nil {
		return nil, httperr.ErrBusiness("professional_not_found")
	}

	patient, err := uc.repo.GetPatientByID(ctx, in.PatientID)
	if err != nil {
		return nil, httperr.ErrBusiness("patient_not_found")
	}

	durationMin, priceCents, serviceName, err := uc.resolveService(ctx, pro, in.ServiceID)
	if err != nil {
		return nil, err
	}

	startMin, now, err := validateSchedule(pro, in.Date, in.Time)
	if err != nil {
		return nil, err
	}

	// reserva de paciente só em horário da grade publicada
	weekday := int(dateWeekday(in.Date, pro.Timezone))
	if !withinAvailability(pro.Availability[weekday], startMin, durationMin) {
		return nil, httperr.ErrBusiness("outside_availability")
	}

	status := domain.StatusPending
	payment := domain.PaymentNone
	if pro.DepositPercent > 0 {
		status = domain.StatusPendingPayment
		payment = domain.PaymentPending
	}

	patientID := patient.ID
	ap := &domain.Appointment{
		ID:     uuid.NewString(),
		Source: domain.SourcePatient,

		ProfessionalID:   pro.ID,
		ProfessionalName: pro.Name,

		PatientID:    &patientID,
		PatientName:  patient.Name,
		PatientEmail: patient.Email,

		ServiceID:   in.ServiceID,
		ServiceName: serviceName,

		Date:        in.Date,
		Time:        in.Time,
		DurationMin: durationMin,

		PriceCents:     priceCents,
		DepositPercent: pro.DepositPercent,
		PaymentStatus:  payment,

		Status:     status,
		RoomStatus: domain.RoomWaiting,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.repo.CreateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.slots.Invalidate(ctx, pro.ID, ap.Date)

	// avisa a contraparte, nunca quem criou
	uc.notify.Dispatch(notify.Event{
		UserRef: notify.UserRef(domain.RoleProfessional, pro.ID),
		Type:    "appointment_booked",
		Payload: map[string]any{
			"appointment_id": ap.ID,
			"source":         ap.Source,
			"date":           ap.Date,
			"time":           ap.Time,
			"patient_name":   ap.PatientName,
		},
	})

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: pro.ID,
		Actor:          notify.UserRef(domain.RolePatient, patient.ID),
		Action:         "appointment_booked",
		Entity:         "booking",
		EntityRef:      ap.ID,
	})

	return ap, nil
}

// ======================================================
// EXECUTE — entrada manual do profissional (fonte professional)
// ======================================================

func (uc *CreateAppointment) ExecuteManual(
	ctx context.Context,
	in CreateManualInput,
) (*domain.Appointment, error) {

	pro, err := uc.repo.GetProfessionalByID(ctx, in.ProfessionalID)
	if err != nil {
		return nil, httperr.ErrBusiness("professional_not_found")
	}

	patientName := in.PatientName
	patientEmail := in.PatientEmail
	if in.PatientID != nil {
		patient, err := uc.repo.GetPatientByID(ctx, *in.PatientID)
		if err != nil {
			return nil, httperr.ErrBusiness("patient_not_found")
		}
		patientName = patient.Name
		patientEmail = patient.Email
	} else {
		if patientName == "" {
			return nil, httperr.ErrBusiness("patient_name_required")
		}
		if patientEmail != "" && !validators.IsEmailDomainValid(patientEmail) {
			return nil, httperr.ErrBusiness("invalid_email_domain")
		}
	}

	durationMin, priceCents, serviceName, err := uc.resolveService(ctx, pro, in.ServiceID)
	if err != nil {
		return nil, err
	}

	_, now, err := validateSchedule(pro, in.Date, in.Time)
	if err != nil {
		return nil, err
	}

	// entrada manual: sem depósito, direto em pending; o profissional
	// pode agendar fora da grade publicada
	ap := &domain.Appointment{
		Source: domain.SourceProfessional,

		ProfessionalID:   pro.ID,
		ProfessionalName: pro.Name,

		PatientID:    in.PatientID,
		PatientName:  patientName,
		PatientEmail: patientEmail,

		ServiceID:   in.ServiceID,
		ServiceName: serviceName,

		Date:        in.Date,
		Time:        in.Time,
		DurationMin: durationMin,

		PriceCents:    priceCents,
		PaymentStatus: domain.PaymentNone,

		Status:     domain.StatusPending,
		RoomStatus: domain.RoomWaiting,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.repo.CreateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.slots.Invalidate(ctx, pro.ID, ap.Date)

	if in.PatientID != nil {
		uc.notify.Dispatch(notify.Event{
			UserRef: notify.UserRef(domain.RolePatient, *in.PatientID),
			Type:    "appointment_booked",
			Payload: map[string]any{
				"appointment_id":    ap.ID,
				"source":            ap.Source,
				"date":              ap.Date,
				"time":              ap.Time,
				"professional_name": pro.Name,
			},
		})
	}

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: pro.ID,
		Actor:          notify.UserRef(domain.RoleProfessional, pro.ID),
		Action:         "appointment_created",
		Entity:         "appointment",
		EntityRef:      ap.ID,
	})

	return ap, nil
}

// ======================================================
// HELPERS
// ======================================================

func (uc *CreateAppointment) resolveService(
	ctx context.Context,
	pro *models.Professional,
	serviceID *uint,
) (durationMin int, priceCents int64, serviceName string, err error) {

	durationMin = pro.SessionDurationMin
	priceCents = pro.PriceCents

	if serviceID == nil {
		return durationMin, priceCents, "", nil
	}

	svc, err := uc.repo.GetService(ctx, pro.ID, *serviceID)
	if err != nil || !svc.Active {
		return 0, 0, "", httperr.ErrBusiness("service_not_found")
	}

	if svc.DurationMin > 0 {
		durationMin = svc.DurationMin
	}
	if svc.PriceCents > 0 {
		priceCents = svc.PriceCents
	}
	return durationMin, priceCents, svc.Name, nil
}

func validateSchedule(
	pro *models.Professional,
	date string,
	timeStr string,
) (startMin int, now time.Time, err error) {

	loc := timezone.Location(pro.Timezone)

	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, loc)
	if err != nil {
		return 0, time.Time{}, httperr.ErrBusiness("invalid_date_or_time")
	}

	now = timezone.NowIn(pro.Timezone)
	if !start.After(now) {
		return 0, time.Time{}, httperr.ErrBusiness("time_in_past")
	}

	startMin, err = domain.ParseHM(timeStr)
	if err != nil {
		return 0, time.Time{}, httperr.ErrBusiness("invalid_date_or_time")
	}
	return startMin, now, nil
}

func dateWeekday(date string, tz string) time.Weekday {
	d, err := time.ParseInLocation("2006-01-02", date, timezone.Location(tz))
	if err != nil {
		return time.Sunday
	}
	return d.Weekday()
}

func withinAvailability(day models.DayAvailability, startMin, durationMin int) bool {
	if !day.Enabled {
		return false
	}
	for _, r := range day.Ranges {
		if startMin >= r.StartMin && startMin+durationMin <= r.EndMin {
			return true
		}
	}
	return false
}
