package appointment

import (
	"context"
	"sort"

	domain "github.com/ConsultaVida01/consulta-scheduler/internal/domain/appointment"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
	"github.com/ConsultaVida01/consulta-scheduler/internal/infra/cache"
	"github.com/ConsultaVida01/consulta-scheduler/internal/timezone"
)

type GetAvailability struct {
	repo  domain.Repository
	slots *cache.SlotCache
}

func NewGetAvailability(repo domain.Repository, slots *cache.SlotCache) *GetAvailability {
	return &GetAvailability{repo: repo, slots: slots}
}

// Execute calcula os horários livres de um dia: grade semanal menos os
// agendamentos que ocupam horário, nas duas fontes.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.TimeSlot, error) {

	pro, err := uc.repo.GetProfessionalByID(ctx, in.ProfessionalID)
	if err != nil {
		return nil, httperr.ErrBusiness("professional_not_found")
	}

	durationMin := pro.SessionDurationMin
	if in.ServiceID != nil {
		svc, err := uc.repo.GetService(ctx, pro.ID, *in.ServiceID)
		if err != nil || !svc.Active {
			return nil, httperr.ErrBusiness("service_not_found")
		}
		if svc.DurationMin > 0 {
			durationMin = svc.DurationMin
		}
	}

	if cached, ok := uc.slots.Get(ctx, pro.ID, in.Date, durationMin); ok {
		return cached, nil
	}

	weekday := int(dateWeekday(in.Date, pro.Timezone))
	candidates := domain.GenerateSlots(pro.Availability[weekday], durationMin, pro.BufferMin)

	// faixas sobrepostas geram duplicados
	seen := make(map[int]bool, len(candidates))
	starts := candidates[:0]
	for _, s := range candidates {
		if !seen[s] {
			seen[s] = true
			starts = append(starts, s)
		}
	}
	sort.Ints(starts)

	occupied, err := uc.repo.ListForDay(ctx, pro.ID, in.Date)
	if err != nil {
		return nil, err
	}

	now := timezone.NowIn(pro.Timezone)
	today := now.Format("2006-01-02")
	nowMin := now.Hour()*60 + now.Minute()

	free := make([]domain.TimeSlot, 0, len(starts))
	for _, start := range starts {
		if in.Date == today && start <= nowMin {
			continue
		}
		if overlapsAny(occupied, start, durationMin) {
			continue
		}
		free = append(free, domain.TimeSlot{
			Start: domain.FormatMin(start),
			End:   domain.FormatMin(start + durationMin),
		})
	}

	uc.slots.Set(ctx, pro.ID, in.Date, durationMin, free)
	return free, nil
}

func overlapsAny(occupied []domain.Appointment, startMin, durationMin int) bool {
	for _, ap := range occupied {
		s := ap.StartMin()
		if startMin < s+ap.DurationMin && s < startMin+durationMin {
			return true
		}
	}
	return false
}
