package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/ConsultaVida01/consulta-scheduler/internal/domain/appointment"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
	"github.com/ConsultaVida01/consulta-scheduler/internal/models"
)

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aDur, bStart, bDur int
		want                       bool
	}{
		{"identical", 600, 50, 600, 50, true},
		{"contained", 600, 90, 630, 30, true},
		{"partial overlap", 600, 90, 630, 90, true},
		{"touching end-to-start", 600, 50, 650, 50, false},
		{"touching start-to-end", 650, 50, 600, 50, false},
		{"disjoint", 540, 50, 720, 50, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, overlaps(tc.aStart, tc.aDur, tc.bStart, tc.bDur))
			// simétrico
			assert.Equal(t, tc.want, overlaps(tc.bStart, tc.bDur, tc.aStart, tc.aDur))
		})
	}
}

func TestSlotFreeAgainst_IntervalNotExactStart(t *testing.T) {
	// 10:00 por 90min ocupa até 11:30
	records := []slotRecord{
		{id: "1", source: domain.SourceProfessional, startMin: 600, durationMin: 90},
	}

	// 10:30 começa diferente mas cruza o intervalo: ocupado
	assert.False(t, slotFreeAgainst(records, 630, 50, nil))
	// 11:30 encosta no fim: livre
	assert.True(t, slotFreeAgainst(records, 690, 50, nil))
	// 09:30+50 termina às 10:20: ocupado
	assert.False(t, slotFreeAgainst(records, 570, 50, nil))
	// 09:00+50 termina às 09:50: livre
	assert.True(t, slotFreeAgainst(records, 540, 50, nil))
}

func TestSlotFreeAgainst_ExcludeSelf(t *testing.T) {
	records := []slotRecord{
		{id: "42", source: domain.SourceProfessional, startMin: 600, durationMin: 50},
		{id: "abc", source: domain.SourcePatient, startMin: 840, durationMin: 50},
	}

	self := domain.Ref{Source: domain.SourceProfessional, ID: "42"}

	// sem exclusão o próprio registro bloqueia o horário
	assert.False(t, slotFreeAgainst(records, 600, 50, nil))
	assert.True(t, slotFreeAgainst(records, 600, 50, &self))

	// exclusão vale por (source, id): mesmo id em outra fonte não conta
	other := domain.Ref{Source: domain.SourcePatient, ID: "42"}
	assert.False(t, slotFreeAgainst(records, 600, 50, &other))
}

func TestSortViews_AgendaOrder(t *testing.T) {
	older := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	views := []domain.Appointment{
		{ID: "c", Date: "2026-09-11", Time: "09:00", CreatedAt: older},
		{ID: "a", Date: "2026-09-10", Time: "14:00", CreatedAt: older},
		{ID: "b", Date: "2026-09-10", Time: "09:00", CreatedAt: newer},
		{ID: "b2", Date: "2026-09-10", Time: "09:00", CreatedAt: older},
	}

	sortViews(views, domain.OrderAgenda)

	assert.Equal(t, []string{"b2", "b", "a", "c"}, []string{
		views[0].ID, views[1].ID, views[2].ID, views[3].ID,
	})
}

func TestSortViews_HistoryOrder(t *testing.T) {
	t0 := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	views := []domain.Appointment{
		{ID: "oldest", CreatedAt: t0},
		{ID: "newest", CreatedAt: t0.Add(2 * time.Hour)},
		{ID: "middle", CreatedAt: t0.Add(time.Hour)},
	}

	sortViews(views, domain.OrderHistory)

	assert.Equal(t, "newest", views[0].ID)
	assert.Equal(t, "middle", views[1].ID)
	assert.Equal(t, "oldest", views[2].ID)
}

func TestFromProfessionalRecord_PatientNameFallback(t *testing.T) {
	m := &models.Appointment{
		ID:             42,
		ProfessionalID: 1,
		Date:           "2026-09-10",
		Time:           "10:00",
		DurationMin:    50,
		Status:         "confirmed",
		RoomStatus:     "waiting",
		Patient:        &models.Patient{Name: "João Plataforma", Email: "joao@example.com"},
	}

	v := fromProfessionalRecord(m)

	assert.Equal(t, "42", v.ID)
	assert.Equal(t, domain.SourceProfessional, v.Source)
	// sem nome inline, cai no paciente da plataforma
	assert.Equal(t, "João Plataforma", v.PatientName)
	assert.Equal(t, "joao@example.com", v.PatientEmail)

	// nome inline tem precedência
	m.PatientName = "Maria Avulsa"
	v = fromProfessionalRecord(m)
	assert.Equal(t, "Maria Avulsa", v.PatientName)
}

func TestFromPatientRecord_NameViaRelation(t *testing.T) {
	b := &models.Booking{
		ID:             "b7a9e2d0-0000-0000-0000-000000000000",
		PatientID:      7,
		ProfessionalID: 1,
		Date:           "2026-09-10",
		Time:           "10:00",
		DurationMin:    50,
		Status:         "pending_payment",
		RoomStatus:     "waiting",
		Patient:        models.Patient{ID: 7, Name: "João Paciente"},
		Professional:   models.Professional{ID: 1, Name: "Dra. Helena"},
	}

	v := fromPatientRecord(b)

	assert.Equal(t, b.ID, v.ID)
	assert.Equal(t, domain.SourcePatient, v.Source)
	assert.Equal(t, "João Paciente", v.PatientName)
	assert.Equal(t, "Dra. Helena", v.ProfessionalName)
	assert.NotNil(t, v.PatientID)
	assert.Equal(t, uint(7), *v.PatientID)
}

func TestScheduleLockKeys_Deterministic(t *testing.T) {
	k1a, k2a := scheduleLockKeys(1, "2026-09-10")
	k1b, k2b := scheduleLockKeys(1, "2026-09-10")

	// mesma (profissional, dia) sempre dá a mesma chave: duas transações
	// concorrentes disputam o mesmo advisory lock
	assert.Equal(t, k1a, k1b)
	assert.Equal(t, k2a, k2b)
	assert.Equal(t, int32(1), k1a)
}

func TestScheduleLockKeys_SeparateSchedules(t *testing.T) {
	_, day1 := scheduleLockKeys(1, "2026-09-10")
	_, day2 := scheduleLockKeys(1, "2026-09-11")
	assert.NotEqual(t, day1, day2)

	pro1, _ := scheduleLockKeys(1, "2026-09-10")
	pro2, _ := scheduleLockKeys(2, "2026-09-10")
	assert.NotEqual(t, pro1, pro2)
}

func TestMergeSources_BothHealthy(t *testing.T) {
	pro := []domain.Appointment{{ID: "1", Source: domain.SourceProfessional}}
	pat := []domain.Appointment{{ID: "b1", Source: domain.SourcePatient}}

	res, err := mergeSources(pro, nil, pat, nil)
	require.NoError(t, err)

	assert.Len(t, res.Appointments, 2)
	assert.Empty(t, res.Degraded)
}

func TestMergeSources_OneSourceDownDegrades(t *testing.T) {
	pro := []domain.Appointment{{ID: "1", Source: domain.SourceProfessional}}

	res, err := mergeSources(pro, nil, nil, errors.New("connection refused"))
	require.NoError(t, err)

	assert.Len(t, res.Appointments, 1)
	assert.Equal(t, []domain.Source{domain.SourcePatient}, res.Degraded)

	pat := []domain.Appointment{{ID: "b1", Source: domain.SourcePatient}}
	res, err = mergeSources(nil, errors.New("timeout"), pat, nil)
	require.NoError(t, err)

	assert.Len(t, res.Appointments, 1)
	assert.Equal(t, []domain.Source{domain.SourceProfessional}, res.Degraded)
}

func TestMergeSources_BothDownIsError(t *testing.T) {
	res, err := mergeSources(nil, errors.New("down"), nil, errors.New("down"))

	assert.Nil(t, res)
	assert.True(t, httperr.IsBusiness(err, "sources_unavailable"))
}

func TestDualSourceViewsAreNeverMerged(t *testing.T) {
	// mesmo id textual nas duas fontes continua sendo dois registros
	m := &models.Appointment{ID: 7, Date: "2026-09-10", Time: "09:00", DurationMin: 50}
	b := &models.Booking{ID: "7", PatientID: 7, Date: "2026-09-10", Time: "14:00", DurationMin: 50}

	views := []domain.Appointment{fromProfessionalRecord(m), fromPatientRecord(b)}

	assert.Len(t, views, 2)
	assert.NotEqual(t, views[0].Ref(), views[1].Ref())
}
