package appointment

import (
	"context"

	"github.com/ConsultaVida01/consulta-scheduler/internal/models"
)

type ListOrder string

const (
	// OrderAgenda ordena por (date, time) ascendente — visão futura.
	OrderAgenda ListOrder = "agenda"
	// OrderHistory ordena por created_at descendente — auditoria.
	OrderHistory ListOrder = "history"
)

type ListFilter struct {
	ProfessionalID *uint
	PatientID      *uint
	DateFrom       string // inclusive, YYYY-MM-DD
	DateTo         string // inclusive
	Order          ListOrder
}

// ListResult carrega o merge das duas fontes. Degraded lista fontes que
// falharam — resultado parcial, não fatal.
type ListResult struct {
	Appointments []Appointment
	Degraded     []Source
}

type Repository interface {
	// -------- Professional / Service / Patient --------
	GetProfessionalByID(
		ctx context.Context,
		id uint,
	) (*models.Professional, error)

	GetProfessionalBySlug(
		ctx context.Context,
		slug string,
	) (*models.Professional, error)

	GetService(
		ctx context.Context,
		professionalID uint,
		serviceID uint,
	) (*models.Service, error)

	GetPatientByID(
		ctx context.Context,
		id uint,
	) (*models.Patient, error)

	// -------- Appointment (create / conflict) --------

	// CreateAppointment insere na coleção da fonte do registro,
	// re-verificando a ausência de conflito na mesma transação.
	CreateAppointment(
		ctx context.Context,
		ap *Appointment,
	) error

	// RescheduleAppointment persiste data/hora novas, re-verificando
	// conflito (excluindo o próprio registro) na mesma transação.
	RescheduleAppointment(
		ctx context.Context,
		ap *Appointment,
	) error

	IsSlotFree(
		ctx context.Context,
		professionalID uint,
		date string,
		startMin int,
		durationMin int,
		exclude *Ref,
	) (bool, error)

	// -------- Appointment (state change) --------
	GetAppointment(
		ctx context.Context,
		ref Ref,
	) (*Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *Appointment,
	) error

	// -------- Listagem unificada --------
	ListForDay(
		ctx context.Context,
		professionalID uint,
		date string,
	) ([]Appointment, error)

	List(
		ctx context.Context,
		filter ListFilter,
	) (*ListResult, error)
}
