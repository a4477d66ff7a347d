package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ConsultaVida01/consulta-scheduler/internal/httpresp"
	"github.com/ConsultaVida01/consulta-scheduler/internal/usecase/room"
)

// ======================================================
// ROOM HANDLER — sala de vídeo do atendimento
// ======================================================

type RoomHandler struct {
	rooms *room.Controller
}

func NewRoomHandler(rooms *room.Controller) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// POST /api/me/appointments/:source/:id/room/open
func (h *RoomHandler) Open(c *gin.Context) {
	ref, ok := refFromPath(c)
	if !ok {
		return
	}

	ap, err := h.rooms.Open(c.Request.Context(), ref, currentUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"meeting_room_id": ap.MeetingRoomID,
		"room_status":     ap.RoomStatus,
	})
}

// POST /api/me/appointments/:source/:id/room/join
// POST /api/patient/appointments/:source/:id/room/join
func (h *RoomHandler) Join(c *gin.Context) {
	ref, ok := refFromPath(c)
	if !ok {
		return
	}

	out, err := h.rooms.Join(c.Request.Context(), ref, currentRole(c), currentUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	httpresp.OK(c, out)
}

// POST /api/me/appointments/:source/:id/room/end
func (h *RoomHandler) End(c *gin.Context) {
	ref, ok := refFromPath(c)
	if !ok {
		return
	}

	ap, err := h.rooms.End(c.Request.Context(), ref, currentUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	httpresp.OK(c, ap)
}
