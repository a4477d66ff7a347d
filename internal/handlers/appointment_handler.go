package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/ConsultaVida01/consulta-scheduler/internal/domain/appointment"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httpresp"
	usecase "github.com/ConsultaVida01/consulta-scheduler/internal/usecase/appointment"
)

// ======================================================
// APPOINTMENT HANDLER — agenda do profissional
// ======================================================

type AppointmentHandler struct {
	create       *usecase.CreateAppointment
	list         *usecase.ListAppointments
	availability *usecase.GetAvailability
	cancel       *usecase.CancelAppointment
	reschedule   *usecase.RescheduleAppointment
	changeStatus *usecase.ChangeStatus
	review       *usecase.ReviewPayment
}

func NewAppointmentHandler(
	create *usecase.CreateAppointment,
	list *usecase.ListAppointments,
	availability *usecase.GetAvailability,
	cancel *usecase.CancelAppointment,
	reschedule *usecase.RescheduleAppointment,
	changeStatus *usecase.ChangeStatus,
	review *usecase.ReviewPayment,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:       create,
		list:         list,
		availability: availability,
		cancel:       cancel,
		reschedule:   reschedule,
		changeStatus: changeStatus,
		review:       review,
	}
}

// --------------------------------------------------
// POST /api/me/appointments — entrada manual
// --------------------------------------------------

type createManualRequest struct {
	PatientID    *uint  `json:"patient_id"`
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	PatientPhone string `json:"patient_phone"`

	ServiceID *uint `json:"service_id"`

	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req createManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", err.Error())
		return
	}

	ap, err := h.create.ExecuteManual(c.Request.Context(), usecase.CreateManualInput{
		ProfessionalID: currentUserID(c),
		PatientID:      req.PatientID,
		PatientName:    req.PatientName,
		PatientEmail:   req.PatientEmail,
		PatientPhone:   req.PatientPhone,
		ServiceID:      req.ServiceID,
		Date:           req.Date,
		Time:           req.Time,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(201, ap)
}

// --------------------------------------------------
// GET /api/me/appointments?date= | ?month=YYYY-MM | ?date_from=&date_to=
// --------------------------------------------------

func (h *AppointmentHandler) List(c *gin.Context) {
	proID := currentUserID(c)
	filter := domain.ListFilter{
		ProfessionalID: &proID,
		Order:          domain.OrderAgenda,
	}

	switch {
	case c.Query("date") != "":
		filter.DateFrom = c.Query("date")
		filter.DateTo = c.Query("date")

	case c.Query("month") != "":
		first, err := time.Parse("2006-01", c.Query("month"))
		if err != nil {
			httperr.BadRequest(c, "invalid_month", "month must be YYYY-MM")
			return
		}
		filter.DateFrom = first.Format("2006-01-02")
		filter.DateTo = first.AddDate(0, 1, -1).Format("2006-01-02")

	default:
		filter.DateFrom = c.Query("date_from")
		filter.DateTo = c.Query("date_to")
	}

	h.respondList(c, filter)
}

// GET /api/me/appointments/history
func (h *AppointmentHandler) History(c *gin.Context) {
	proID := currentUserID(c)
	h.respondList(c, domain.ListFilter{
		ProfessionalID: &proID,
		DateFrom:       c.Query("date_from"),
		DateTo:         c.Query("date_to"),
		Order:          domain.OrderHistory,
	})
}

func (h *AppointmentHandler) respondList(c *gin.Context, filter domain.ListFilter) {
	out, err := h.list.Execute(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}

	if len(out.Warnings) > 0 {
		httpresp.ListDegraded(c, out.Appointments, out.Warnings)
		return
	}
	httpresp.List(c, out.Appointments)
}

// --------------------------------------------------
// GET /api/me/slots?date=&service_id=
// --------------------------------------------------

func (h *AppointmentHandler) Slots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "query param date is required")
		return
	}

	input := domain.AvailabilityInput{
		ProfessionalID: currentUserID(c),
		Date:           date,
	}
	if raw := c.Query("service_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_service_id", "invalid service id")
			return
		}
		sid := uint(id)
		input.ServiceID = &sid
	}

	slots, err := h.availability.Execute(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	httpresp.List(c, slots)
}

// --------------------------------------------------
// PATCH /api/me/appointments/:source/:id/status
// --------------------------------------------------

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AppointmentHandler) ChangeStatus(c *gin.Context) {
	ref, ok := refFromPath(c)
	if !ok {
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", err.Error())
		return
	}

	ap, err := h.changeStatus.Execute(c.Request.Context(), usecase.ChangeStatusInput{
		Ref:            ref,
		ProfessionalID: currentUserID(c),
		To:             domain.Status(req.Status),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// --------------------------------------------------
// POST /api/me/appointments/:source/:id/cancel
// --------------------------------------------------

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	ref, ok := refFromPath(c)
	if !ok {
		return
	}

	var req cancelRequest
	_ = c.ShouldBindJSON(&req)

	ap, err := h.cancel.Execute(c.Request.Context(), usecase.CancelInput{
		Ref:    ref,
		Role:   domain.RoleProfessional,
		UserID: currentUserID(c),
		Reason: req.Reason,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// --------------------------------------------------
// POST /api/me/appointments/:source/:id/reschedule
// --------------------------------------------------

type rescheduleRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	ref, ok := refFromPath(c)
	if !ok {
		return
	}

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", err.Error())
		return
	}

	ap, err := h.reschedule.Execute(c.Request.Context(), usecase.RescheduleInput{
		Ref:            ref,
		ProfessionalID: currentUserID(c),
		NewDate:        req.Date,
		NewTime:        req.Time,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// --------------------------------------------------
// POST /api/me/appointments/:source/:id/payment/review
// --------------------------------------------------

type reviewPaymentRequest struct {
	Action string `json:"action" binding:"required"` // approve | reject
	Reason string `json:"reason"`
}

func (h *AppointmentHandler) ReviewPayment(c *gin.Context) {
	ref, ok := refFromPath(c)
	if !ok {
		return
	}

	var req reviewPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", err.Error())
		return
	}

	ap, err := h.review.Execute(c.Request.Context(), usecase.ReviewPaymentInput{
		Ref:            ref,
		ProfessionalID: currentUserID(c),
		Action:         domain.ReviewAction(req.Action),
		Reason:         req.Reason,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	httpresp.OK(c, ap)
}
