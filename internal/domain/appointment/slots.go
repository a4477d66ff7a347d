package appointment

import (
	"fmt"
	"time"

	"github.com/ConsultaVida01/consulta-scheduler/internal/models"
)

// GenerateSlots converte as faixas de um dia em horários candidatos de
// início (minutos desde a meia-noite). Função pura: não sabe nada sobre
// agendamentos existentes — esse filtro é do conflict checker.
//
// Faixas são tratadas de forma independente; faixas duplicadas ou
// sobrepostas produzem candidatos duplicados, que o caller deduplica.
func GenerateSlots(day models.DayAvailability, durationMin, bufferMin int) []int {
	if !day.Enabled || durationMin <= 0 {
		return nil
	}
	if bufferMin < 0 {
		bufferMin = 0
	}

	stride := durationMin + bufferMin

	var slots []int
	for _, r := range day.Ranges {
		if r.StartMin >= r.EndMin {
			continue
		}
		for cursor := r.StartMin; cursor+durationMin <= r.EndMin; cursor += stride {
			slots = append(slots, cursor)
		}
	}
	return slots
}

// FormatMin formata minutos desde a meia-noite como HH:MM.
func FormatMin(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ParseHM converte HH:MM em minutos desde a meia-noite.
func ParseHM(hm string) (int, error) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
