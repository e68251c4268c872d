package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/hms-scheduler/internal/httperr"
	"github.com/BruksfildServices01/hms-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/hms-scheduler/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/hms-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	complete *ucAppointment.CompleteAppointment
	noShow   *ucAppointment.NoShowAppointment
	list     *ucAppointment.ListAppointments
	detail   *ucAppointment.GetAppointment
}

func NewAppointmentHandler(
	complete *ucAppointment.CompleteAppointment,
	noShow *ucAppointment.NoShowAppointment,
	list *ucAppointment.ListAppointments,
	detail *ucAppointment.GetAppointment,
) *AppointmentHandler {
	return &AppointmentHandler{
		complete: complete,
		noShow:   noShow,
		list:     list,
		detail:   detail,
	}
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.MustGet(middleware.ContextUserRole).(string)

	aps, err := h.list.Execute(c.Request.Context(), userID, role)
	if err != nil {
		writeBusinessError(c, err)
		return
	}

	httpresp.List(c, aps)
}

// ======================================================
// DETAIL
// ======================================================

func (h *AppointmentHandler) Detail(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.MustGet(middleware.ContextUserRole).(string)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid appointment id.")
		return
	}

	ap, err := h.detail.Execute(c.Request.Context(), uint(id), userID, role)
	if err != nil {
		writeBusinessError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// COMPLETE
// ======================================================

func (h *AppointmentHandler) Complete(c *gin.Context) {
	if !requireRole(c, middleware.RoleDoctor) {
		return
	}
	doctorID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid appointment id.")
		return
	}

	ap, err := h.complete.Execute(c.Request.Context(), uint(id), doctorID)
	if err != nil {
		writeBusinessError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// NO SHOW
// ======================================================

func (h *AppointmentHandler) NoShow(c *gin.Context) {
	if !requireRole(c, middleware.RoleDoctor) {
		return
	}
	doctorID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid appointment id.")
		return
	}

	ap, err := h.noShow.Execute(c.Request.Context(), uint(id), doctorID)
	if err != nil {
		writeBusinessError(c, err)
		return
	}

	httpresp.OK(c, ap)
}
