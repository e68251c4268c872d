package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/hms-scheduler/internal/httperr"
	"github.com/BruksfildServices01/hms-scheduler/internal/middleware"
)

// requireRole is the capability check at every entry point: a typed
// forbidden error, no redirects.
func requireRole(c *gin.Context, role string) bool {
	current, _ := c.MustGet(middleware.ContextUserRole).(string)
	if current != role {
		httperr.Forbidden(c, "forbidden", "You are not allowed to perform this action.")
		return false
	}
	return true
}

func writeBusinessError(c *gin.Context, err error) {
	code := httperr.BusinessCode(err)

	switch code {
	case "invalid_request", "past_date", "slot_expired", "already_past", "not_elapsed":
		httperr.BadRequest(c, code, messageFor(code))
	case "slot_already_taken", "time_conflict", "already_cancelled", "slot_booked", "invalid_state":
		httperr.Conflict(c, code, messageFor(code))
	case "slot_not_found", "appointment_not_found", "user_not_found":
		httperr.NotFound(c, code, messageFor(code))
	case "forbidden":
		httperr.Forbidden(c, code, messageFor(code))
	case "busy":
		httperr.Unavailable(c, code, messageFor(code))
	default:
		httperr.Internal(c, "internal_error", "Something went wrong.")
	}
}

func messageFor(code string) string {
	switch code {
	case "slot_already_taken":
		return "Sorry, this slot was just booked by another patient. Please choose a different slot."
	case "slot_expired":
		return "This slot is no longer available."
	case "already_cancelled":
		return "This appointment is already cancelled."
	case "already_past":
		return "Cannot cancel a past appointment."
	case "time_conflict":
		return "This slot overlaps with an existing slot."
	case "past_date":
		return "Cannot create slots in the past."
	case "slot_booked":
		return "Cannot delete a booked slot."
	case "not_elapsed":
		return "The appointment time has not passed yet."
	case "busy":
		return "The slot is busy, please try again."
	case "forbidden":
		return "You are not allowed to perform this action."
	case "invalid_state":
		return "The appointment cannot change to that state."
	case "slot_not_found":
		return "Slot not found."
	case "appointment_not_found":
		return "Appointment not found."
	case "user_not_found":
		return "User not found."
	case "invalid_request":
		return "Invalid request."
	default:
		return code
	}
}
