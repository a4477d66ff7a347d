package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
)

// ===============================
// Sala de vídeo (sub-máquina)
// ===============================
//
// waiting → open → in_progress → ended. O profissional é a única
// autoridade de admissão: abre e encerra a sala; o paciente só entra
// dentro da janela de atendimento.

// RoomWindowOpen indica se a sala já pode ser aberta/acessada: no
// máximo RoomOpenLeadMinutes antes do horário agendado.
func RoomWindowOpen(ap *Appointment, now time.Time, loc *time.Location, pol Policy) bool {
	opens := ap.StartsAt(loc).Add(-time.Duration(pol.RoomOpenLeadMinutes) * time.Minute)
	return !now.Before(opens)
}

// OpenRoom abre a sala de um agendamento confirmado e gera o id da
// reunião. Somente a partir de waiting, dentro da janela.
func OpenRoom(ap *Appointment, now time.Time, loc *time.Location, pol Policy) error {
	if ap.Status != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	if ap.RoomStatus != RoomWaiting {
		return httperr.ErrBusiness("room_not_waiting")
	}
	if !RoomWindowOpen(ap, now, loc, pol) {
		opens := ap.StartsAt(loc).Add(-time.Duration(pol.RoomOpenLeadMinutes) * time.Minute)
		return httperr.ErrPolicy("outside_room_window", map[string]any{
			"opens_at": opens,
		})
	}

	ap.RoomStatus = RoomOpen
	ap.MeetingRoomID = uuid.NewString()
	ap.UpdatedAt = now
	return nil
}

// JoinRoom admite um participante. O paciente só entra com a sala
// aberta e dentro da janela — uma sala aberta cedo demais e esquecida
// não vira porta de entrada antecipada. A primeira entrada do paciente
// inicia a sessão.
func JoinRoom(ap *Appointment, role string, now time.Time, loc *time.Location, pol Policy) error {
	switch ap.RoomStatus {
	case RoomOpen, RoomInProgress:
	default:
		return httperr.ErrBusiness("room_not_open")
	}

	if role == RolePatient {
		if !RoomWindowOpen(ap, now, loc, pol) {
			return httperr.ErrPolicy("outside_room_window", map[string]any{
				"opens_at": ap.StartsAt(loc).Add(-time.Duration(pol.RoomOpenLeadMinutes) * time.Minute),
			})
		}
		if ap.RoomStatus == RoomOpen {
			ap.RoomStatus = RoomInProgress
			ap.UpdatedAt = now
		}
	}

	return nil
}

// EndRoom encerra a sala e conclui o agendamento pai. Ended é terminal.
func EndRoom(ap *Appointment, now time.Time) error {
	switch ap.RoomStatus {
	case RoomOpen, RoomInProgress:
	default:
		return httperr.ErrBusiness("room_not_open")
	}

	ap.RoomStatus = RoomEnded
	if err := Complete(ap, now); err != nil {
		return err
	}
	return nil
}
