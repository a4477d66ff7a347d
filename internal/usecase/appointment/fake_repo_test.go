package appointment

import (
	"context"
	"fmt"

	domain "github.com/ConsultaVida01/consulta-scheduler/internal/domain/appointment"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
	"github.com/ConsultaVida01/consulta-scheduler/internal/models"
)

// fakeRepo guarda tudo em memória, com a mesma regra de conflito do
// repositório real: sobreposição de intervalo entre fontes, apenas
// status não-terminais ocupam horário.
type fakeRepo struct {
	pros     map[uint]*models.Professional
	patients map[uint]*models.Patient
	services map[uint]*models.Service

	appointments map[domain.Ref]*domain.Appointment
	nextID       int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		pros:         make(map[uint]*models.Professional),
		patients:     make(map[uint]*models.Patient),
		services:     make(map[uint]*models.Service),
		appointments: make(map[domain.Ref]*domain.Appointment),
		nextID:       1,
	}
}

func (f *fakeRepo) GetProfessionalByID(_ context.Context, id uint) (*models.Professional, error) {
	pro, ok := f.pros[id]
	if !ok {
		return nil, httperr.ErrBusiness("professional_not_found")
	}
	return pro, nil
}

func (f *fakeRepo) GetProfessionalBySlug(_ context.Context, slug string) (*models.Professional, error) {
	for _, pro := range f.pros {
		if pro.Slug == slug {
			return pro, nil
		}
	}
	return nil, httperr.ErrBusiness("professional_not_found")
}

func (f *fakeRepo) GetService(_ context.Context, professionalID, serviceID uint) (*models.Service, error) {
	svc, ok := f.services[serviceID]
	if !ok || svc.ProfessionalID != professionalID {
		return nil, httperr.ErrBusiness("service_not_found")
	}
	return svc, nil
}

func (f *fakeRepo) GetPatientByID(_ context.Context, id uint) (*models.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, httperr.ErrBusiness("patient_not_found")
	}
	return p, nil
}

func (f *fakeRepo) CreateAppointment(ctx context.Context, ap *domain.Appointment) error {
	free, _ := f.IsSlotFree(ctx, ap.ProfessionalID, ap.Date, ap.StartMin(), ap.DurationMin, nil)
	if !free {
		return httperr.ErrBusiness("time_conflict")
	}

	if ap.ID == "" {
		ap.ID = fmt.Sprintf("%d", f.nextID)
		f.nextID++
	}

	cp := *ap
	f.appointments[ap.Ref()] = &cp
	return nil
}

func (f *fakeRepo) RescheduleAppointment(ctx context.Context, ap *domain.Appointment) error {
	ref := ap.Ref()
	free, _ := f.IsSlotFree(ctx, ap.ProfessionalID, ap.Date, ap.StartMin(), ap.DurationMin, &ref)
	if !free {
		return httperr.ErrBusiness("time_conflict")
	}

	cp := *ap
	f.appointments[ref] = &cp
	return nil
}

func (f *fakeRepo) IsSlotFree(
	_ context.Context,
	professionalID uint,
	date string,
	startMin int,
	durationMin int,
	exclude *domain.Ref,
) (bool, error) {

	for ref, ap := range f.appointments {
		if ap.ProfessionalID != professionalID || ap.Date != date {
			continue
		}
		if ap.Status.Terminal() {
			continue
		}
		if exclude != nil && ref == *exclude {
			continue
		}
		s := ap.StartMin()
		if startMin < s+ap.DurationMin && s < startMin+durationMin {
			return false, nil
		}
	}
	return true, nil
}

func (f *fakeRepo) GetAppointment(_ context.Context, ref domain.Ref) (*domain.Appointment, error) {
	ap, ok := f.appointments[ref]
	if !ok {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	cp := *ap
	return &cp, nil
}

func (f *fakeRepo) UpdateAppointment(_ context.Context, ap *domain.Appointment) error {
	if _, ok := f.appointments[ap.Ref()]; !ok {
		return httperr.ErrBusiness("appointment_not_found")
	}
	cp := *ap
	f.appointments[ap.Ref()] = &cp
	return nil
}

func (f *fakeRepo) ListForDay(_ context.Context, professionalID uint, date string) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, ap := range f.appointments {
		if ap.ProfessionalID == professionalID && ap.Date == date && !ap.Status.Terminal() {
			out = append(out, *ap)
		}
	}
	return out, nil
}

func (f *fakeRepo) List(_ context.Context, filter domain.ListFilter) (*domain.ListResult, error) {
	result := &domain.ListResult{}
	for _, ap := range f.appointments {
		if filter.ProfessionalID != nil && ap.ProfessionalID != *filter.ProfessionalID {
			continue
		}
		if filter.PatientID != nil && (ap.PatientID == nil || *ap.PatientID != *filter.PatientID) {
			continue
		}
		if filter.DateFrom != "" && ap.Date < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && ap.Date > filter.DateTo {
			continue
		}
		result.Appointments = append(result.Appointments, *ap)
	}
	return result, nil
}

var _ domain.Repository = (*fakeRepo)(nil)
