package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/hms-scheduler/internal/httperr"
	"github.com/BruksfildServices01/hms-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/hms-scheduler/internal/middleware"
	"github.com/BruksfildServices01/hms-scheduler/internal/models"
)

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	if !requireRole(c, middleware.RoleDoctor) {
		return
	}
	doctorID := c.MustGet(middleware.ContextUserID).(uint)

	var logs []models.AuditLog
	if err := h.db.
		Where("doctor_id = ?", doctorID).
		Order("created_at DESC").
		Limit(200).
		Find(&logs).Error; err != nil {
		httperr.Internal(c, "failed_to_list_audit_logs", "Could not load audit logs.")
		return
	}

	httpresp.List(c, logs)
}
