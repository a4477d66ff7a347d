package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/ConsultaVida01/consulta-scheduler/internal/domain/appointment"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
	"github.com/ConsultaVida01/consulta-scheduler/internal/models"
)

func seedRepo(depositPercent int) *fakeRepo {
	repo := newFakeRepo()

	allWeek := models.WeeklyAvailability{}
	for weekday := 0; weekday <= 6; weekday++ {
		allWeek[weekday] = models.DayAvailability{
			Enabled: true,
			Ranges:  []models.TimeRange{{StartMin: 9 * 60, EndMin: 18 * 60}},
		}
	}

	repo.pros[1] = &models.Professional{
		ID:                 1,
		Name:               "Dra. Helena",
		Slug:               "dra-helena",
		Timezone:           "UTC",
		SessionDurationMin: 50,
		BufferMin:          10,
		PriceCents:         20000,
		DepositPercent:     depositPercent,
		Availability:       allWeek,
	}
	repo.patients[7] = &models.Patient{
		ID:    7,
		Name:  "João Paciente",
		Email: "joao@example.com",
	}
	return repo
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func bookingInput(date, hm string) CreateBookingInput {
	return CreateBookingInput{
		PatientID:      7,
		ProfessionalID: 1,
		Date:           date,
		Time:           hm,
	}
}

// --------------------------------------------------
// Booking (fonte patient)
// --------------------------------------------------

func TestBooking_DepositRequiredStartsPendingPayment(t *testing.T) {
	repo := seedRepo(50)
	uc := NewCreateAppointment(repo, nil, nil, nil)

	ap, err := uc.ExecuteBooking(context.Background(), bookingInput(futureDate(14), "10:00"))
	require.NoError(t, err)

	assert.Equal(t, domain.SourcePatient, ap.Source)
	assert.NotEmpty(t, ap.ID)
	assert.Equal(t, domain.StatusPendingPayment, ap.Status)
	assert.Equal(t, domain.PaymentPending, ap.PaymentStatus)
	assert.Equal(t, 50, ap.DepositPercent)
	assert.Equal(t, int64(20000), ap.PriceCents)
	assert.Equal(t, 50, ap.DurationMin)
	assert.Equal(t, "João Paciente", ap.PatientName)
}

func TestBooking_NoDepositStartsPending(t *testing.T) {
	repo := seedRepo(0)
	uc := NewCreateAppointment(repo, nil, nil, nil)

	ap, err := uc.ExecuteBooking(context.Background(), bookingInput(futureDate(14), "10:00"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, ap.Status)
	assert.Equal(t, domain.PaymentNone, ap.PaymentStatus)
}

func TestBooking_OverlappingTimesConflict(t *testing.T) {
	repo := seedRepo(0)
	uc := NewCreateAppointment(repo, nil, nil, nil)
	date := futureDate(14)

	_, err := uc.ExecuteBooking(context.Background(), bookingInput(date, "10:00"))
	require.NoError(t, err)

	// 10:30 cruza com 10:00+50min mesmo sem início idêntico
	_, err = uc.ExecuteBooking(context.Background(), bookingInput(date, "10:30"))
	assert.True(t, httperr.IsBusiness(err, "time_conflict"))
}

func TestBooking_OutsideAvailabilityRejected(t *testing.T) {
	repo := seedRepo(0)
	uc := NewCreateAppointment(repo, nil, nil, nil)

	_, err := uc.ExecuteBooking(context.Background(), bookingInput(futureDate(14), "22:00"))
	assert.True(t, httperr.IsBusiness(err, "outside_availability"))
}

func TestBooking_PastTimeRejected(t *testing.T) {
	repo := seedRepo(0)
	uc := NewCreateAppointment(repo, nil, nil, nil)

	_, err := uc.ExecuteBooking(context.Background(), bookingInput("2020-01-01", "10:00"))
	assert.True(t, httperr.IsBusiness(err, "time_in_past"))
}

func TestBooking_ServiceOverridesDurationAndPrice(t *testing.T) {
	repo := seedRepo(0)
	repo.services[3] = &models.Service{
		ID:             3,
		ProfessionalID: 1,
		Name:           "Avaliação inicial",
		DurationMin:    80,
		PriceCents:     30000,
		Active:         true,
	}
	uc := NewCreateAppointment(repo, nil, nil, nil)

	in := bookingInput(futureDate(14), "10:00")
	sid := uint(3)
	in.ServiceID = &sid

	ap, err := uc.ExecuteBooking(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 80, ap.DurationMin)
	assert.Equal(t, int64(30000), ap.PriceCents)
	assert.Equal(t, "Avaliação inicial", ap.ServiceName)
}

// --------------------------------------------------
// Entrada manual (fonte professional)
// --------------------------------------------------

func TestManualCreate_OffPlatformPatient(t *testing.T) {
	repo := seedRepo(50)
	uc := NewCreateAppointment(repo, nil, nil, nil)

	ap, err := uc.ExecuteManual(context.Background(), CreateManualInput{
		ProfessionalID: 1,
		PatientName:    "Maria Externa",
		Date:           futureDate(14),
		Time:           "11:00",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceProfessional, ap.Source)
	assert.Nil(t, ap.PatientID)
	assert.Equal(t, "Maria Externa", ap.PatientName)
	// entrada manual nunca entra no fluxo de depósito
	assert.Equal(t, domain.StatusPending, ap.Status)
	assert.Equal(t, domain.PaymentNone, ap.PaymentStatus)
}

func TestManualCreate_AllowedOutsidePublishedGrid(t *testing.T) {
	repo := seedRepo(0)
	uc := NewCreateAppointment(repo, nil, nil, nil)

	_, err := uc.ExecuteManual(context.Background(), CreateManualInput{
		ProfessionalID: 1,
		PatientName:    "Maria Externa",
		Date:           futureDate(14),
		Time:           "22:00",
	})
	assert.NoError(t, err)
}

func TestManualCreate_RequiresNameWithoutPatientID(t *testing.T) {
	repo := seedRepo(0)
	uc := NewCreateAppointment(repo, nil, nil, nil)

	_, err := uc.ExecuteManual(context.Background(), CreateManualInput{
		ProfessionalID: 1,
		Date:           futureDate(14),
		Time:           "11:00",
	})
	assert.True(t, httperr.IsBusiness(err, "patient_name_required"))
}

func TestManualAndBookingConflictAcrossSources(t *testing.T) {
	repo := seedRepo(0)
	uc := NewCreateAppointment(repo, nil, nil, nil)
	date := futureDate(14)

	_, err := uc.ExecuteManual(context.Background(), CreateManualInput{
		ProfessionalID: 1,
		PatientName:    "Maria Externa",
		Date:           date,
		Time:           "10:00",
	})
	require.NoError(t, err)

	// reserva do paciente esbarra no registro manual da outra fonte
	_, err = uc.ExecuteBooking(context.Background(), bookingInput(date, "10:30"))
	assert.True(t, httperr.IsBusiness(err, "time_conflict"))
}

// --------------------------------------------------
// Disponibilidade × ciclo de vida
// --------------------------------------------------

func TestAvailability_SlotLifecycle(t *testing.T) {
	repo := seedRepo(0)
	createUC := NewCreateAppointment(repo, nil, nil, nil)
	availUC := NewGetAvailability(repo, nil)
	cancelUC := NewCancelAppointment(repo, nil, nil, nil, domain.DefaultPolicy())

	date := futureDate(14)
	ctx := context.Background()
	input := domain.AvailabilityInput{ProfessionalID: 1, Date: date}

	slots, err := availUC.Execute(ctx, input)
	require.NoError(t, err)
	assert.True(t, hasSlot(slots, "10:00"))

	ap, err := createUC.ExecuteBooking(ctx, bookingInput(date, "10:00"))
	require.NoError(t, err)

	slots, err = availUC.Execute(ctx, input)
	require.NoError(t, err)
	assert.False(t, hasSlot(slots, "10:00"))
	assert.True(t, hasSlot(slots, "09:00"))

	// cancelado libera o horário (agendamento está a >24h)
	_, err = cancelUC.Execute(ctx, CancelInput{
		Ref:    ap.Ref(),
		Role:   domain.RolePatient,
		UserID: 7,
		Reason: "imprevisto",
	})
	require.NoError(t, err)

	slots, err = availUC.Execute(ctx, input)
	require.NoError(t, err)
	assert.True(t, hasSlot(slots, "10:00"))
}

func hasSlot(slots []domain.TimeSlot, start string) bool {
	for _, s := range slots {
		if s.Start == start {
			return true
		}
	}
	return false
}

// --------------------------------------------------
// Cancelamento
// --------------------------------------------------

func TestCancel_UnauthorizedPartyRejected(t *testing.T) {
	repo := seedRepo(0)
	createUC := NewCreateAppointment(repo, nil, nil, nil)
	cancelUC := NewCancelAppointment(repo, nil, nil, nil, domain.DefaultPolicy())
	ctx := context.Background()

	ap, err := createUC.ExecuteBooking(ctx, bookingInput(futureDate(14), "10:00"))
	require.NoError(t, err)

	_, err = cancelUC.Execute(ctx, CancelInput{
		Ref:    ap.Ref(),
		Role:   domain.RolePatient,
		UserID: 99,
	})
	assert.True(t, httperr.IsBusiness(err, "unauthorized"))

	_, err = cancelUC.Execute(ctx, CancelInput{
		Ref:    ap.Ref(),
		Role:   domain.RoleProfessional,
		UserID: 2,
	})
	assert.True(t, httperr.IsBusiness(err, "unauthorized"))
}

// --------------------------------------------------
// Reagendamento
// --------------------------------------------------

func TestReschedule_ConflictLeavesRecordUntouched(t *testing.T) {
	repo := seedRepo(0)
	createUC := NewCreateAppointment(repo, nil, nil, nil)
	reschedUC := NewRescheduleAppointment(repo, nil, nil, nil)
	ctx := context.Background()
	date := futureDate(14)

	_, err := createUC.ExecuteBooking(ctx, bookingInput(date, "10:00"))
	require.NoError(t, err)

	b, err := createUC.ExecuteBooking(ctx, bookingInput(date, "14:00"))
	require.NoError(t, err)

	_, err = reschedUC.Execute(ctx, RescheduleInput{
		Ref:            b.Ref(),
		ProfessionalID: 1,
		NewDate:        date,
		NewTime:        "10:30",
	})
	assert.True(t, httperr.IsBusiness(err, "time_conflict"))

	// registro persistido permanece no horário original, sem histórico
	stored, err := repo.GetAppointment(ctx, b.Ref())
	require.NoError(t, err)
	assert.Equal(t, date, stored.Date)
	assert.Equal(t, "14:00", stored.Time)
	assert.Empty(t, stored.RescheduleHistory)
}

func TestReschedule_MovesAndRecordsHistory(t *testing.T) {
	repo := seedRepo(0)
	createUC := NewCreateAppointment(repo, nil, nil, nil)
	reschedUC := NewRescheduleAppointment(repo, nil, nil, nil)
	ctx := context.Background()
	date := futureDate(14)
	newDate := futureDate(15)

	ap, err := createUC.ExecuteBooking(ctx, bookingInput(date, "10:00"))
	require.NoError(t, err)

	moved, err := reschedUC.Execute(ctx, RescheduleInput{
		Ref:            ap.Ref(),
		ProfessionalID: 1,
		NewDate:        newDate,
		NewTime:        "11:00",
	})
	require.NoError(t, err)

	assert.Equal(t, newDate, moved.Date)
	assert.Equal(t, "11:00", moved.Time)
	require.Len(t, moved.RescheduleHistory, 1)
	assert.Equal(t, date, moved.RescheduleHistory[0].OldDate)
	assert.Equal(t, "10:00", moved.RescheduleHistory[0].OldTime)

	stored, err := repo.GetAppointment(ctx, ap.Ref())
	require.NoError(t, err)
	assert.Equal(t, newDate, stored.Date)
}

func TestReschedule_OnlyOwningProfessional(t *testing.T) {
	repo := seedRepo(0)
	createUC := NewCreateAppointment(repo, nil, nil, nil)
	reschedUC := NewRescheduleAppointment(repo, nil, nil, nil)
	ctx := context.Background()

	ap, err := createUC.ExecuteBooking(ctx, bookingInput(futureDate(14), "10:00"))
	require.NoError(t, err)

	_, err = reschedUC.Execute(ctx, RescheduleInput{
		Ref:            ap.Ref(),
		ProfessionalID: 99,
		NewDate:        futureDate(15),
		NewTime:        "11:00",
	})
	assert.True(t, httperr.IsBusiness(err, "unauthorized"))
}
