package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/hms-scheduler/internal/audit"
	"github.com/BruksfildServices01/hms-scheduler/internal/calendar"
	"github.com/BruksfildServices01/hms-scheduler/internal/config"
	"github.com/BruksfildServices01/hms-scheduler/internal/handlers"
	infraRepo "github.com/BruksfildServices01/hms-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/hms-scheduler/internal/middleware"
	"github.com/BruksfildServices01/hms-scheduler/internal/notify"
	"github.com/BruksfildServices01/hms-scheduler/internal/sideeffect"
	ucAppointment "github.com/BruksfildServices01/hms-scheduler/internal/usecase/appointment"
	ucBooking "github.com/BruksfildServices01/hms-scheduler/internal/usecase/booking"
	ucSlot "github.com/BruksfildServices01/hms-scheduler/internal/usecase/slot"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db, cfg.LockTimeout)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	calendarService := calendar.NewService(db, rdb, cfg.GoogleClientID, cfg.GoogleClientSecret)
	notifyClient := notify.NewClient(cfg.EmailServiceURL)

	effects := sideeffect.NewDispatcher(
		bookingRepo,
		calendarService,
		notifyClient,
		auditDispatcher,
		cfg.Timezone,
	)

	// ======================================================
	// USE CASES
	// ======================================================
	reserveUC := ucBooking.NewReserveAppointment(bookingRepo, effects, auditDispatcher)
	cancelUC := ucBooking.NewCancelAppointment(bookingRepo, effects, auditDispatcher)

	createSlotUC := ucSlot.NewCreateSlot(bookingRepo, auditDispatcher, cfg.Timezone)
	deleteSlotUC := ucSlot.NewDeleteSlot(bookingRepo, auditDispatcher)
	listSlotsUC := ucSlot.NewListSlots(bookingRepo)

	completeUC := ucAppointment.NewCompleteAppointment(bookingRepo, auditDispatcher)
	noShowUC := ucAppointment.NewNoShowAppointment(bookingRepo, auditDispatcher)
	listAppointmentsUC := ucAppointment.NewListAppointments(bookingRepo)
	getAppointmentUC := ucAppointment.NewGetAppointment(bookingRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	bookingHandler := handlers.NewBookingHandler(reserveUC, cancelUC)
	slotHandler := handlers.NewSlotHandler(createSlotUC, deleteSlotUC, listSlotsUC)
	appointmentHandler := handlers.NewAppointmentHandler(
		completeUC,
		noShowUC,
		listAppointmentsUC,
		getAppointmentUC,
	)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))
	{
		// ------------------------------
		// SLOTS (DOCTOR)
		// ------------------------------
		api.POST("/slots", slotHandler.Create)
		api.GET("/slots", slotHandler.List)
		api.DELETE("/slots/:id", slotHandler.Delete)

		// ------------------------------
		// SLOTS (PATIENT VIEW)
		// ------------------------------
		api.GET("/doctors/:id/slots", slotHandler.ListOpenForDoctor)

		// ------------------------------
		// APPOINTMENTS
		// ------------------------------
		api.POST("/appointments", bookingHandler.Reserve)
		api.GET("/appointments", appointmentHandler.List)
		api.GET("/appointments/:id", appointmentHandler.Detail)
		api.PATCH("/appointments/:id/cancel", bookingHandler.Cancel)
		api.PATCH("/appointments/:id/complete", appointmentHandler.Complete)
		api.PATCH("/appointments/:id/no-show", appointmentHandler.NoShow)

		// ------------------------------
		// AUDIT
		// ------------------------------
		api.GET("/audit-logs", auditLogsHandler.List)
	}
}
