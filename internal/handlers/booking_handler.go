package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/hms-scheduler/internal/httperr"
	"github.com/BruksfildServices01/hms-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/hms-scheduler/internal/middleware"
	ucBooking "github.com/BruksfildServices01/hms-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	reserve *ucBooking.ReserveAppointment
	cancel  *ucBooking.CancelAppointment
}

func NewBookingHandler(
	reserve *ucBooking.ReserveAppointment,
	cancel *ucBooking.CancelAppointment,
) *BookingHandler {
	return &BookingHandler{
		reserve: reserve,
		cancel:  cancel,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type ReserveRequest struct {
	SlotID uint   `json:"slot_id" binding:"required"`
	Reason string `json:"reason"`
}

// ======================================================
// RESERVE
// ======================================================

func (h *BookingHandler) Reserve(c *gin.Context) {
	if !requireRole(c, middleware.RolePatient) {
		return
	}
	patientID := c.MustGet(middleware.ContextUserID).(uint)

	var req ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	ap, err := h.reserve.Execute(c.Request.Context(), ucBooking.ReserveInput{
		SlotID:    req.SlotID,
		PatientID: patientID,
		Reason:    req.Reason,
	})
	if err != nil {
		writeBusinessError(c, err)
		return
	}

	httpresp.Created(c, ap)
}

// ======================================================
// CANCEL
// ======================================================

func (h *BookingHandler) Cancel(c *gin.Context) {
	if !requireRole(c, middleware.RolePatient) {
		return
	}
	patientID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid appointment id.")
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), uint(id), patientID)
	if err != nil {
		writeBusinessError(c, err)
		return
	}

	httpresp.OK(c, ap)
}
