package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/ConsultaVida01/consulta-scheduler/internal/audit"
	"github.com/ConsultaVida01/consulta-scheduler/internal/config"
	domain "github.com/ConsultaVida01/consulta-scheduler/internal/domain/appointment"
	"github.com/ConsultaVida01/consulta-scheduler/internal/handlers"
	"github.com/ConsultaVida01/consulta-scheduler/internal/infra/cache"
	"github.com/ConsultaVida01/consulta-scheduler/internal/infra/repository"
	"github.com/ConsultaVida01/consulta-scheduler/internal/middleware"
	"github.com/ConsultaVida01/consulta-scheduler/internal/notify"
	"github.com/ConsultaVida01/consulta-scheduler/internal/storage"
	appointmentuc "github.com/ConsultaVida01/consulta-scheduler/internal/usecase/appointment"
	roomuc "github.com/ConsultaVida01/consulta-scheduler/internal/usecase/room"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {

	// ==============================
	// INFRA
	// ==============================
	repo := repository.NewAppointmentGormRepository(db)

	auditor := audit.NewDispatcher(audit.New(db))
	notifier := notify.NewDispatcher(notify.NewLogger(db))
	slots := cache.NewSlotCache(rdb, time.Duration(cfg.SlotCacheTTL)*time.Second)
	receipts := storage.NewReceiptStore(cfg)

	policy := domain.Policy{
		CancelNoticeHours:     cfg.CancelNoticeHours,
		PaymentRejectionLimit: cfg.PaymentRejectionLimit,
		RoomOpenLeadMinutes:   cfg.RoomOpenLeadMinutes,
	}

	// ==============================
	// USE CASES
	// ==============================
	createUC := appointmentuc.NewCreateAppointment(repo, notifier, auditor, slots)
	listUC := appointmentuc.NewListAppointments(repo)
	availabilityUC := appointmentuc.NewGetAvailability(repo, slots)
	cancelUC := appointmentuc.NewCancelAppointment(repo, notifier, auditor, slots, policy)
	rescheduleUC := appointmentuc.NewRescheduleAppointment(repo, notifier, auditor, slots)
	changeStatusUC := appointmentuc.NewChangeStatus(repo, notifier, auditor, slots)
	receiptUC := appointmentuc.NewSubmitReceipt(repo, receipts, notifier, auditor)
	reviewUC := appointmentuc.NewReviewPayment(repo, notifier, auditor, slots, policy)
	roomUC := roomuc.NewController(repo, notifier, auditor, policy)

	// ==============================
	// HANDLERS
	// ==============================
	publicHandler := handlers.NewPublicHandler(db, availabilityUC)
	availabilityHandler := handlers.NewAvailabilityHandler(db, slots)
	serviceHandler := handlers.NewServiceHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(
		createUC, listUC, availabilityUC,
		cancelUC, rescheduleUC, changeStatusUC, reviewUC,
	)
	patientHandler := handlers.NewPatientHandler(createUC, listUC, cancelUC, receiptUC)
	roomHandler := handlers.NewRoomHandler(roomUC)
	auditHandler := handlers.NewAuditHandler(db)

	// ==============================
	// ROUTES
	// ==============================
	api := r.Group("/api")

	public := api.Group("/public")
	{
		public.GET("/professionals/:slug", publicHandler.GetProfile)
		public.GET("/professionals/:slug/services", publicHandler.ListServices)
		public.GET("/professionals/:slug/availability", publicHandler.GetAvailability)
	}

	me := api.Group("/me")
	me.Use(middleware.AuthMiddleware(cfg), middleware.RequireRole(middleware.RoleProfessional))
	{
		me.GET("/availability", availabilityHandler.Get)
		me.PUT("/availability", availabilityHandler.Update)

		me.GET("/services", serviceHandler.List)
		me.POST("/services", serviceHandler.Create)
		me.PUT("/services/:id", serviceHandler.Update)
		me.DELETE("/services/:id", serviceHandler.Delete)

		me.GET("/audit", auditHandler.List)

		me.GET("/slots", appointmentHandler.Slots)

		me.POST("/appointments", appointmentHandler.Create)
		me.GET("/appointments", appointmentHandler.List)
		me.GET("/appointments/history", appointmentHandler.History)

		me.PATCH("/appointments/:source/:id/status", appointmentHandler.ChangeStatus)
		me.POST("/appointments/:source/:id/cancel", appointmentHandler.Cancel)
		me.POST("/appointments/:source/:id/reschedule", appointmentHandler.Reschedule)
		me.POST("/appointments/:source/:id/payment/review", appointmentHandler.ReviewPayment)

		me.POST("/appointments/:source/:id/room/open", roomHandler.Open)
		me.POST("/appointments/:source/:id/room/join", roomHandler.Join)
		me.POST("/appointments/:source/:id/room/end", roomHandler.End)
	}

	patient := api.Group("/patient")
	patient.Use(middleware.AuthMiddleware(cfg), middleware.RequireRole(middleware.RolePatient))
	{
		patient.POST("/appointments", patientHandler.Create)
		patient.GET("/appointments", patientHandler.List)

		patient.POST("/appointments/:source/:id/cancel", patientHandler.Cancel)
		patient.POST("/appointments/:source/:id/receipt", patientHandler.SubmitReceipt)
		patient.POST("/appointments/:source/:id/room/join", roomHandler.Join)
	}
}
