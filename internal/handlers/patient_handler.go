package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	domain "github.com/ConsultaVida01/consulta-scheduler/internal/domain/appointment"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httpresp"
	usecase "github.com/ConsultaVida01/consulta-scheduler/internal/usecase/appointment"
)

// comprovantes acima disso são rejeitados antes do upload
const maxReceiptBytes = 10 << 20

// ======================================================
// PATIENT HANDLER — reservas do paciente
// ======================================================

type PatientHandler struct {
	create  *usecase.CreateAppointment
	list    *usecase.ListAppointments
	cancel  *usecase.CancelAppointment
	receipt *usecase.SubmitReceipt
}

func NewPatientHandler(
	create *usecase.CreateAppointment,
	list *usecase.ListAppointments,
	cancel *usecase.CancelAppointment,
	receipt *usecase.SubmitReceipt,
) *PatientHandler {
	return &PatientHandler{
		create:  create,
		list:    list,
		cancel:  cancel,
		receipt: receipt,
	}
}

// --------------------------------------------------
// POST /api/patient/appointments — reserva
// --------------------------------------------------

type createBookingRequest struct {
	ProfessionalID uint  `json:"professional_id" binding:"required"`
	ServiceID      *uint `json:"service_id"`

	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

func (h *PatientHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", err.Error())
		return
	}

	ap, err := h.create.ExecuteBooking(c.Request.Context(), usecase.CreateBookingInput{
		PatientID:      currentUserID(c),
		ProfessionalID: req.ProfessionalID,
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
// GET /api/patient/appointments?order=agenda|history
// --------------------------------------------------

func (h *PatientHandler) List(c *gin.Context) {
	patientID := currentUserID(c)

	order := domain.OrderAgenda
	if c.Query("order") == string(domain.OrderHistory) {
		order = domain.OrderHistory
	}

	out, err := h.list.Execute(c.Request.Context(), domain.ListFilter{
		PatientID: &patientID,
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
		Order:     order,
	})
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
// POST /api/patient/appointments/:source/:id/cancel
// --------------------------------------------------

func (h *PatientHandler) Cancel(c *gin.Context) {
	ref, ok := refFromPath(c)
	if !ok {
		return
	}

	var req cancelRequest
	_ = c.ShouldBindJSON(&req)

	ap, err := h.cancel.Execute(c.Request.Context(), usecase.CancelInput{
		Ref:    ref,
		Role:   domain.RolePatient,
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
// POST /api/patient/appointments/:source/:id/receipt — multipart
// --------------------------------------------------

func (h *PatientHandler) SubmitReceipt(c *gin.Context) {
	ref, ok := refFromPath(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("receipt")
	if err != nil {
		httperr.BadRequest(c, "missing_receipt", "multipart field receipt is required")
		return
	}
	defer file.Close()

	if header.Size > maxReceiptBytes {
		httperr.BadRequest(c, "receipt_too_large", "receipt exceeds the size limit")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxReceiptBytes+1))
	if err != nil || len(data) > maxReceiptBytes {
		httperr.BadRequest(c, "invalid_receipt", "could not read receipt upload")
		return
	}

	ap, err := h.receipt.Execute(c.Request.Context(), usecase.SubmitReceiptInput{
		Ref:         ref,
		PatientID:   currentUserID(c),
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	httpresp.OK(c, ap)
}
