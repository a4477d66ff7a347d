package repository

import (
	"context"
	"hash/fnv"
	"log"
	"sort"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/ConsultaVida01/consulta-scheduler/internal/domain/appointment"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
	"github.com/ConsultaVida01/consulta-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Professional / Service / Patient
// --------------------------------------------------

func (r *AppointmentGormRepository) GetProfessionalByID(
	ctx context.Context,
	id uint,
) (*models.Professional, error) {

	var pro models.Professional
	if err := r.db.WithContext(ctx).First(&pro, id).Error; err != nil {
		return nil, err
	}
	return &pro, nil
}

func (r *AppointmentGormRepository) GetProfessionalBySlug(
	ctx context.Context,
	slug string,
) (*models.Professional, error) {

	var pro models.Professional
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&pro).Error; err != nil {
		return nil, err
	}
	return &pro, nil
}

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	professionalID uint,
	serviceID uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND professional_id = ?", serviceID, professionalID).
		First(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *AppointmentGormRepository) GetPatientByID(
	ctx context.Context,
	id uint,
) (*models.Patient, error) {

	var pat models.Patient
	if err := r.db.WithContext(ctx).First(&pat, id).Error; err != nil {
		return nil, err
	}
	return &pat, nil
}

// --------------------------------------------------
// Normalização (fonte → visão unificada)
// --------------------------------------------------

func fromProfessionalRecord(m *models.Appointment) domain.Appointment {
	v := domain.Appointment{
		ID:     strconv.FormatUint(uint64(m.ID), 10),
		Source: domain.SourceProfessional,

		ProfessionalID:   m.ProfessionalID,
		ProfessionalName: m.Professional.Name,

		PatientID:    m.PatientID,
		PatientName:  m.PatientName,
		PatientEmail: m.PatientEmail,

		ServiceID: m.ServiceID,

		Date:        m.Date,
		Time:        m.Time,
		DurationMin: m.DurationMin,

		PriceCents:        m.PriceCents,
		DepositPercent:    m.DepositPercent,
		PaymentStatus:     domain.PaymentStatus(m.PaymentStatus),
		ReceiptRef:        m.ReceiptRef,
		PaymentRejections: m.PaymentRejections,

		Status: domain.Status(m.Status),

		CancelledAt:        m.CancelledAt,
		CancelledBy:        m.CancelledBy,
		CancellationReason: m.CancellationReason,

		RescheduleHistory: m.RescheduleHistory,

		MeetingRoomID: m.MeetingRoomID,
		RoomStatus:    domain.RoomStatus(m.RoomStatus),

		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}

	// fallback: registro manual pode referenciar paciente da plataforma
	if v.PatientName == "" && m.Patient != nil {
		v.PatientName = m.Patient.Name
		if v.PatientEmail == "" {
			v.PatientEmail = m.Patient.Email
		}
	}
	if m.Service != nil {
		v.ServiceName = m.Service.Name
	}
	return v
}

func fromPatientRecord(b *models.Booking) domain.Appointment {
	v := domain.Appointment{
		ID:     b.ID,
		Source: domain.SourcePatient,

		ProfessionalID:   b.ProfessionalID,
		ProfessionalName: b.Professional.Name,

		PatientID:    &b.PatientID,
		PatientName:  b.Patient.Name,
		PatientEmail: b.Patient.Email,

		ServiceID: b.ServiceID,

		Date:        b.Date,
		Time:        b.Time,
		DurationMin: b.DurationMin,

		PriceCents:        b.PriceCents,
		DepositPercent:    b.DepositPercent,
		PaymentStatus:     domain.PaymentStatus(b.PaymentStatus),
		ReceiptRef:        b.ReceiptRef,
		PaymentRejections: b.PaymentRejections,

		Status: domain.Status(b.Status),

		CancelledAt:        b.CancelledAt,
		CancelledBy:        b.CancelledBy,
		CancellationReason: b.CancellationReason,

		RescheduleHistory: b.RescheduleHistory,

		MeetingRoomID: b.MeetingRoomID,
		RoomStatus:    domain.RoomStatus(b.RoomStatus),

		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if b.Service != nil {
		v.ServiceName = b.Service.Name
	}
	return v
}

// applyToAppointment copia de volta os campos que o ciclo de vida altera.
func applyToAppointment(m *models.Appointment, v *domain.Appointment) {
	m.Date = v.Date
	m.Time = v.Time
	m.DurationMin = v.DurationMin
	m.PaymentStatus = string(v.PaymentStatus)
	m.ReceiptRef = v.ReceiptRef
	m.PaymentRejections = v.PaymentRejections
	m.Status = string(v.Status)
	m.CancelledAt = v.CancelledAt
	m.CancelledBy = v.CancelledBy
	m.CancellationReason = v.CancellationReason
	m.RescheduleHistory = v.RescheduleHistory
	m.MeetingRoomID = v.MeetingRoomID
	m.RoomStatus = string(v.RoomStatus)
	m.UpdatedAt = v.UpdatedAt
}

func applyToBooking(b *models.Booking, v *domain.Appointment) {
	b.Date = v.Date
	b.Time = v.Time
	b.DurationMin = v.DurationMin
	b.PaymentStatus = string(v.PaymentStatus)
	b.ReceiptRef = v.ReceiptRef
	b.PaymentRejections = v.PaymentRejections
	b.Status = string(v.Status)
	b.CancelledAt = v.CancelledAt
	b.CancelledBy = v.CancelledBy
	b.CancellationReason = v.CancellationReason
	b.RescheduleHistory = v.RescheduleHistory
	b.MeetingRoomID = v.MeetingRoomID
	b.RoomStatus = string(v.RoomStatus)
	b.UpdatedAt = v.UpdatedAt
}

// --------------------------------------------------
// Conflito de horário (interval overlap)
// --------------------------------------------------

// scheduleLockKeys deriva a chave de advisory lock de (profissional, dia).
func scheduleLockKeys(professionalID uint, date string) (int32, int32) {
	h := fnv.New32a()
	h.Write([]byte(date))
	return int32(professionalID), int32(h.Sum32())
}

// lockSchedule serializa as escritas concorrentes na agenda do dia.
// FOR UPDATE só tranca linhas que já existem: com o horário vazio duas
// transações simultâneas leriam zero conflitos e commitariam as duas.
// O advisory lock transacional cobre também o caso sem linhas; solta
// sozinho no commit/rollback.
func lockSchedule(tx *gorm.DB, professionalID uint, date string) error {
	k1, k2 := scheduleLockKeys(professionalID, date)
	return tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", k1, k2).Error
}

type slotRecord struct {
	id          string
	source      domain.Source
	startMin    int
	durationMin int
}

func (r *AppointmentGormRepository) occupiedSlots(
	db *gorm.DB,
	professionalID uint,
	date string,
	lock bool,
) ([]slotRecord, error) {

	nonTerminal := domain.NonTerminalStatuses()
	var out []slotRecord

	apQuery := db.Model(&models.Appointment{}).
		Select("id", "time", "duration_min").
		Where(
			"professional_id = ? AND date = ? AND status IN ?",
			professionalID, date, nonTerminal,
		)
	bkQuery := db.Model(&models.Booking{}).
		Select("id", "time", "duration_min").
		Where(
			"professional_id = ? AND date = ? AND status IN ?",
			professionalID, date, nonTerminal,
		)
	if lock {
		apQuery = apQuery.Clauses(clause.Locking{Strength: "UPDATE"})
		bkQuery = bkQuery.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var aps []models.Appointment
	if err := apQuery.Find(&aps).Error; err != nil {
		return nil, err
	}
	for _, ap := range aps {
		start, err := domain.ParseHM(ap.Time)
		if err != nil {
			continue
		}
		out = append(out, slotRecord{
			id:          strconv.FormatUint(uint64(ap.ID), 10),
			source:      domain.SourceProfessional,
			startMin:    start,
			durationMin: ap.DurationMin,
		})
	}

	var bks []models.Booking
	if err := bkQuery.Find(&bks).Error; err != nil {
		return nil, err
	}
	for _, bk := range bks {
		start, err := domain.ParseHM(bk.Time)
		if err != nil {
			continue
		}
		out = append(out, slotRecord{
			id:          bk.ID,
			source:      domain.SourcePatient,
			startMin:    start,
			durationMin: bk.DurationMin,
		})
	}

	return out, nil
}

// overlaps compara intervalos semiabertos [start, start+dur).
func overlaps(aStart, aDur, bStart, bDur int) bool {
	return aStart < bStart+bDur && bStart < aStart+aDur
}

func slotFreeAgainst(records []slotRecord, startMin, durationMin int, exclude *domain.Ref) bool {
	for _, rec := range records {
		if exclude != nil && rec.source == exclude.Source && rec.id == exclude.ID {
			continue
		}
		if overlaps(rec.startMin, rec.durationMin, startMin, durationMin) {
			return false
		}
	}
	return true
}

func (r *AppointmentGormRepository) IsSlotFree(
	ctx context.Context,
	professionalID uint,
	date string,
	startMin int,
	durationMin int,
	exclude *domain.Ref,
) (bool, error) {

	records, err := r.occupiedSlots(r.db.WithContext(ctx), professionalID, date, false)
	if err != nil {
		return false, err
	}
	return slotFreeAgainst(records, startMin, durationMin, exclude), nil
}

// --------------------------------------------------
// Create / Reschedule (escrita condicional atômica)
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *domain.Appointment,
) error {

	startMin, err := domain.ParseHM(ap.Time)
	if err != nil {
		return httperr.ErrBusiness("invalid_date_or_time")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := lockSchedule(tx, ap.ProfessionalID, ap.Date); err != nil {
			return err
		}

		records, err := r.occupiedSlots(tx, ap.ProfessionalID, ap.Date, true)
		if err != nil {
			return err
		}
		if !slotFreeAgainst(records, startMin, ap.DurationMin, nil) {
			return httperr.ErrBusiness("time_conflict")
		}

		switch ap.Source {
		case domain.SourceProfessional:
			m := models.Appointment{
				ProfessionalID:    ap.ProfessionalID,
				PatientID:         ap.PatientID,
				PatientName:       ap.PatientName,
				PatientEmail:      ap.PatientEmail,
				ServiceID:         ap.ServiceID,
				Date:              ap.Date,
				Time:              ap.Time,
				DurationMin:       ap.DurationMin,
				PriceCents:        ap.PriceCents,
				DepositPercent:    ap.DepositPercent,
				PaymentStatus:     string(ap.PaymentStatus),
				PaymentRejections: ap.PaymentRejections,
				Status:            string(ap.Status),
				RescheduleHistory: ap.RescheduleHistory,
				RoomStatus:        string(ap.RoomStatus),
			}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
			ap.ID = strconv.FormatUint(uint64(m.ID), 10)
			ap.CreatedAt = m.CreatedAt
			ap.UpdatedAt = m.UpdatedAt

		case domain.SourcePatient:
			if ap.PatientID == nil {
				return httperr.ErrBusiness("patient_required")
			}
			b := models.Booking{
				ID:                ap.ID,
				PatientID:         *ap.PatientID,
				ProfessionalID:    ap.ProfessionalID,
				ServiceID:         ap.ServiceID,
				Date:              ap.Date,
				Time:              ap.Time,
				DurationMin:       ap.DurationMin,
				PriceCents:        ap.PriceCents,
				DepositPercent:    ap.DepositPercent,
				PaymentStatus:     string(ap.PaymentStatus),
				PaymentRejections: ap.PaymentRejections,
				Status:            string(ap.Status),
				RescheduleHistory: ap.RescheduleHistory,
				RoomStatus:        string(ap.RoomStatus),
			}
			if err := tx.Create(&b).Error; err != nil {
				return err
			}
			ap.CreatedAt = b.CreatedAt
			ap.UpdatedAt = b.UpdatedAt

		default:
			return httperr.ErrBusiness("invalid_source")
		}

		return nil
	})
}

func (r *AppointmentGormRepository) RescheduleAppointment(
	ctx context.Context,
	ap *domain.Appointment,
) error {

	startMin, err := domain.ParseHM(ap.Time)
	if err != nil {
		return httperr.ErrBusiness("invalid_date_or_time")
	}

	ref := ap.Ref()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := lockSchedule(tx, ap.ProfessionalID, ap.Date); err != nil {
			return err
		}

		records, err := r.occupiedSlots(tx, ap.ProfessionalID, ap.Date, true)
		if err != nil {
			return err
		}
		if !slotFreeAgainst(records, startMin, ap.DurationMin, &ref) {
			return httperr.ErrBusiness("time_conflict")
		}

		return r.saveView(tx, ap)
	})
}

// --------------------------------------------------
// Get / Update
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	ref domain.Ref,
) (*domain.Appointment, error) {

	db := r.db.WithContext(ctx)

	switch ref.Source {
	case domain.SourceProfessional:
		id, err := strconv.ParseUint(ref.ID, 10, 64)
		if err != nil {
			return nil, gorm.ErrRecordNotFound
		}
		var m models.Appointment
		if err := db.
			Preload("Professional").
			Preload("Patient").
			Preload("Service").
			First(&m, uint(id)).Error; err != nil {
			return nil, err
		}
		v := fromProfessionalRecord(&m)
		return &v, nil

	case domain.SourcePatient:
		var b models.Booking
		if err := db.
			Preload("Professional").
			Preload("Patient").
			Preload("Service").
			Where("id = ?", ref.ID).
			First(&b).Error; err != nil {
			return nil, err
		}
		v := fromPatientRecord(&b)
		return &v, nil
	}

	return nil, gorm.ErrRecordNotFound
}

func (r *AppointmentGormRepository) saveView(db *gorm.DB, ap *domain.Appointment) error {
	switch ap.Source {
	case domain.SourceProfessional:
		id, err := strconv.ParseUint(ap.ID, 10, 64)
		if err != nil {
			return gorm.ErrRecordNotFound
		}
		var m models.Appointment
		if err := db.First(&m, uint(id)).Error; err != nil {
			return err
		}
		applyToAppointment(&m, ap)
		return db.Save(&m).Error

	case domain.SourcePatient:
		var b models.Booking
		if err := db.Where("id = ?", ap.ID).First(&b).Error; err != nil {
			return err
		}
		applyToBooking(&b, ap)
		return db.Save(&b).Error
	}

	return gorm.ErrRecordNotFound
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *domain.Appointment,
) error {
	return r.saveView(r.db.WithContext(ctx), ap)
}

// --------------------------------------------------
// Listagem unificada (dual source)
// --------------------------------------------------

func (r *AppointmentGormRepository) ListForDay(
	ctx context.Context,
	professionalID uint,
	date string,
) ([]domain.Appointment, error) {

	pid := professionalID
	res, err := r.List(ctx, domain.ListFilter{
		ProfessionalID: &pid,
		DateFrom:       date,
		DateTo:         date,
		Order:          domain.OrderAgenda,
	})
	if err != nil {
		return nil, err
	}

	// apenas agendamentos que ocupam horário
	out := res.Appointments[:0]
	for _, ap := range res.Appointments {
		if !ap.Status.Terminal() {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (r *AppointmentGormRepository) queryProfessionalSource(
	ctx context.Context,
	filter domain.ListFilter,
) ([]domain.Appointment, error) {

	q := r.db.WithContext(ctx).
		Preload("Professional").
		Preload("Patient").
		Preload("Service").
		Model(&models.Appointment{})

	if filter.ProfessionalID != nil {
		q = q.Where("professional_id = ?", *filter.ProfessionalID)
	}
	if filter.PatientID != nil {
		q = q.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.DateFrom != "" {
		q = q.Where("date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q = q.Where("date <= ?", filter.DateTo)
	}

	var recs []models.Appointment
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Appointment, 0, len(recs))
	for i := range recs {
		out = append(out, fromProfessionalRecord(&recs[i]))
	}
	return out, nil
}

func (r *AppointmentGormRepository) queryPatientSource(
	ctx context.Context,
	filter domain.ListFilter,
) ([]domain.Appointment, error) {

	q := r.db.WithContext(ctx).
		Preload("Professional").
		Preload("Patient").
		Preload("Service").
		Model(&models.Booking{})

	if filter.ProfessionalID != nil {
		q = q.Where("professional_id = ?", *filter.ProfessionalID)
	}
	if filter.PatientID != nil {
		q = q.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.DateFrom != "" {
		q = q.Where("date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q = q.Where("date <= ?", filter.DateTo)
	}

	var recs []models.Booking
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Appointment, 0, len(recs))
	for i := range recs {
		out = append(out, fromPatientRecord(&recs[i]))
	}
	return out, nil
}

// mergeSources combina os resultados das duas consultas independentes:
// falha em uma não impede o resultado da outra (degradado); falha nas
// duas é retriável.
func mergeSources(
	proViews []domain.Appointment, proErr error,
	patViews []domain.Appointment, patErr error,
) (*domain.ListResult, error) {

	if proErr != nil && patErr != nil {
		return nil, httperr.ErrBusiness("sources_unavailable")
	}

	res := &domain.ListResult{}

	if proErr != nil {
		log.Println("appointment source (professional) unavailable:", proErr)
		res.Degraded = append(res.Degraded, domain.SourceProfessional)
	} else {
		res.Appointments = append(res.Appointments, proViews...)
	}

	if patErr != nil {
		log.Println("appointment source (patient) unavailable:", patErr)
		res.Degraded = append(res.Degraded, domain.SourcePatient)
	} else {
		res.Appointments = append(res.Appointments, patViews...)
	}

	return res, nil
}

func (r *AppointmentGormRepository) List(
	ctx context.Context,
	filter domain.ListFilter,
) (*domain.ListResult, error) {

	proViews, proErr := r.queryProfessionalSource(ctx, filter)
	patViews, patErr := r.queryPatientSource(ctx, filter)

	res, err := mergeSources(proViews, proErr, patViews, patErr)
	if err != nil {
		return nil, err
	}

	sortViews(res.Appointments, filter.Order)
	return res, nil
}

func sortViews(views []domain.Appointment, order domain.ListOrder) {
	switch order {
	case domain.OrderHistory:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].CreatedAt.After(views[j].CreatedAt)
		})
	default: // agenda
		sort.SliceStable(views, func(i, j int) bool {
			if views[i].Date != views[j].Date {
				return views[i].Date < views[j].Date
			}
			if views[i].Time != views[j].Time {
				return views[i].Time < views[j].Time
			}
			return views[i].CreatedAt.Before(views[j].CreatedAt)
		})
	}
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
