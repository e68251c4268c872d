package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/hms-scheduler/internal/httperr"
	"github.com/BruksfildServices01/hms-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/hms-scheduler/internal/middleware"
	ucSlot "github.com/BruksfildServices01/hms-scheduler/internal/usecase/slot"
)

// ======================================================
// HANDLER
// ======================================================

type SlotHandler struct {
	create *ucSlot.CreateSlot
	remove *ucSlot.DeleteSlot
	list   *ucSlot.ListSlots
}

func NewSlotHandler(
	create *ucSlot.CreateSlot,
	remove *ucSlot.DeleteSlot,
	list *ucSlot.ListSlots,
) *SlotHandler {
	return &SlotHandler{
		create: create,
		remove: remove,
		list:   list,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateSlotRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

func (h *SlotHandler) Create(c *gin.Context) {
	if !requireRole(c, middleware.RoleDoctor) {
		return
	}
	doctorID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	slot, err := h.create.Execute(c.Request.Context(), ucSlot.CreateSlotInput{
		DoctorID:  doctorID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		writeBusinessError(c, err)
		return
	}

	httpresp.Created(c, slot)
}

// ======================================================
// LIST (OWN)
// ======================================================

func (h *SlotHandler) List(c *gin.Context) {
	if !requireRole(c, middleware.RoleDoctor) {
		return
	}
	doctorID := c.MustGet(middleware.ContextUserID).(uint)

	slots, err := h.list.ByDoctor(c.Request.Context(), doctorID)
	if err != nil {
		writeBusinessError(c, err)
		return
	}

	httpresp.List(c, slots)
}

// ======================================================
// LIST OPEN (PATIENT VIEW)
// ======================================================

func (h *SlotHandler) ListOpenForDoctor(c *gin.Context) {
	if !requireRole(c, middleware.RolePatient) {
		return
	}

	doctorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid doctor id.")
		return
	}

	slots, err := h.list.OpenForDoctor(c.Request.Context(), uint(doctorID))
	if err != nil {
		writeBusinessError(c, err)
		return
	}

	httpresp.List(c, slots)
}

// ======================================================
// DELETE
// ======================================================

func (h *SlotHandler) Delete(c *gin.Context) {
	if !requireRole(c, middleware.RoleDoctor) {
		return
	}
	doctorID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid slot id.")
		return
	}

	if err := h.remove.Execute(c.Request.Context(), uint(id), doctorID); err != nil {
		writeBusinessError(c, err)
		return
	}

	c.Status(204)
}
