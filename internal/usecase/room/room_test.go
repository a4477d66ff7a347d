package room

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

// stubRepo cobre só o que o controller usa: busca, perfil e persistência.
type stubRepo struct {
	pro *models.Professional
	ap  *domain.Appointment
}

func (s *stubRepo) GetProfessionalByID(context.Context, uint) (*models.Professional, error) {
	return s.pro, nil
}

func (s *stubRepo) GetAppointment(_ context.Context, ref domain.Ref) (*domain.Appointment, error) {
	if s.ap == nil || s.ap.Ref() != ref {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	cp := *s.ap
	return &cp, nil
}

func (s *stubRepo) UpdateAppointment(_ context.Context, ap *domain.Appointment) error {
	cp := *ap
	s.ap = &cp
	return nil
}

func (s *stubRepo) GetProfessionalBySlug(context.Context, string) (*models.Professional, error) {
	return nil, httperr.ErrBusiness("professional_not_found")
}
func (s *stubRepo) GetService(context.Context, uint, uint) (*models.Service, error) {
	return nil, httperr.ErrBusiness("service_not_found")
}
func (s *stubRepo) GetPatientByID(context.Context, uint) (*models.Patient, error) {
	return nil, httperr.ErrBusiness("patient_not_found")
}
func (s *stubRepo) CreateAppointment(context.Context, *domain.Appointment) error     { return nil }
func (s *stubRepo) RescheduleAppointment(context.Context, *domain.Appointment) error { return nil }
func (s *stubRepo) IsSlotFree(context.Context, uint, string, int, int, *domain.Ref) (bool, error) {
	return true, nil
}
func (s *stubRepo) ListForDay(context.Context, uint, string) ([]domain.Appointment, error) {
	return nil, nil
}
func (s *stubRepo) List(context.Context, domain.ListFilter) (*domain.ListResult, error) {
	return &domain.ListResult{}, nil
}

var _ domain.Repository = (*stubRepo)(nil)

func setup(startsIn time.Duration) (*Controller, *stubRepo, domain.Ref) {
	start := time.Now().UTC().Add(startsIn)
	pid := uint(7)

	repo := &stubRepo{
		pro: &models.Professional{ID: 1, Timezone: "UTC"},
		ap: &domain.Appointment{
			ID:             "42",
			Source:         domain.SourceProfessional,
			ProfessionalID: 1,
			PatientID:      &pid,
			Date:           start.Format("2006-01-02"),
			Time:           start.Format("15:04"),
			DurationMin:    50,
			Status:         domain.StatusConfirmed,
			RoomStatus:     domain.RoomWaiting,
		},
	}

	ctrl := NewController(repo, nil, nil, domain.DefaultPolicy())
	return ctrl, repo, repo.ap.Ref()
}

func TestOpen_WithinWindow(t *testing.T) {
	ctrl, repo, ref := setup(10 * time.Minute)

	ap, err := ctrl.Open(context.Background(), ref, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.RoomOpen, ap.RoomStatus)
	assert.NotEmpty(t, ap.MeetingRoomID)
	assert.Equal(t, domain.RoomOpen, repo.ap.RoomStatus)
}

func TestOpen_BeforeWindowRejected(t *testing.T) {
	ctrl, repo, ref := setup(2 * time.Hour)

	_, err := ctrl.Open(context.Background(), ref, 1)
	require.Error(t, err)

	be, ok := httperr.AsBusiness(err)
	require.True(t, ok)
	assert.Equal(t, "outside_room_window", be.Code)
	assert.Equal(t, domain.RoomWaiting, repo.ap.RoomStatus)
}

func TestOpen_OnlyOwningProfessional(t *testing.T) {
	ctrl, _, ref := setup(10 * time.Minute)

	_, err := ctrl.Open(context.Background(), ref, 99)
	assert.True(t, httperr.IsBusiness(err, "unauthorized"))
}

func TestJoin_PatientStartsSession(t *testing.T) {
	ctrl, repo, ref := setup(10 * time.Minute)
	ctx := context.Background()

	_, err := ctrl.Open(ctx, ref, 1)
	require.NoError(t, err)

	out, err := ctrl.Join(ctx, ref, domain.RolePatient, 7)
	require.NoError(t, err)

	assert.Equal(t, domain.RoomInProgress, out.RoomStatus)
	assert.Equal(t, repo.ap.MeetingRoomID, out.MeetingRoomID)

	// reconexão mantém a sessão em andamento
	out, err = ctrl.Join(ctx, ref, domain.RolePatient, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomInProgress, out.RoomStatus)
}

func TestJoin_ClosedRoomRejected(t *testing.T) {
	ctrl, _, ref := setup(10 * time.Minute)

	_, err := ctrl.Join(context.Background(), ref, domain.RolePatient, 7)
	assert.True(t, httperr.IsBusiness(err, "room_not_open"))
}

func TestJoin_StrangerRejected(t *testing.T) {
	ctrl, _, ref := setup(10 * time.Minute)
	ctx := context.Background()

	_, err := ctrl.Open(ctx, ref, 1)
	require.NoError(t, err)

	_, err = ctrl.Join(ctx, ref, domain.RolePatient, 99)
	assert.True(t, httperr.IsBusiness(err, "unauthorized"))
}

func TestEnd_CompletesAppointment(t *testing.T) {
	ctrl, repo, ref := setup(10 * time.Minute)
	ctx := context.Background()

	_, err := ctrl.Open(ctx, ref, 1)
	require.NoError(t, err)

	ap, err := ctrl.End(ctx, ref, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.RoomEnded, ap.RoomStatus)
	assert.Equal(t, domain.StatusCompleted, ap.Status)
	assert.Equal(t, domain.StatusCompleted, repo.ap.Status)

	// encerrada é terminal
	_, err = ctrl.End(ctx, ref, 1)
	assert.True(t, httperr.IsBusiness(err, "room_not_open"))
}
