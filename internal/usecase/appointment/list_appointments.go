package appointment

import (
	"context"
	"fmt"

	domain "github.com/ConsultaVida01/consulta-scheduler/internal/domain/appointment"
	"github.com/ConsultaVida01/consulta-scheduler/internal/dto"
)

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

type ListOutput struct {
	Appointments []dto.AppointmentListDTO
	Warnings     []string
}

// Execute devolve o merge das duas fontes. Se uma fonte falhou o
// resultado é parcial e vem marcado em Warnings.
func (uc *ListAppointments) Execute(
	ctx context.Context,
	filter domain.ListFilter,
) (*ListOutput, error) {

	result, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := &ListOutput{
		Appointments: make([]dto.AppointmentListDTO, 0, len(result.Appointments)),
	}
	for _, ap := range result.Appointments {
		out.Appointments = append(out.Appointments, toListDTO(ap))
	}
	for _, src := range result.Degraded {
		out.Warnings = append(out.Warnings, fmt.Sprintf("source %s unavailable", src))
	}
	return out, nil
}

func toListDTO(ap domain.Appointment) dto.AppointmentListDTO {
	return dto.AppointmentListDTO{
		ID:     ap.ID,
		Source: string(ap.Source),

		Date:        ap.Date,
		Time:        ap.Time,
		DurationMin: ap.DurationMin,

		Status:        string(ap.Status),
		PaymentStatus: string(ap.PaymentStatus),
		RoomStatus:    string(ap.RoomStatus),

		PatientName:      ap.PatientName,
		ProfessionalName: ap.ProfessionalName,
		ServiceName:      ap.ServiceName,

		PriceCents: ap.PriceCents,

		CreatedAt: ap.CreatedAt,
	}
}
