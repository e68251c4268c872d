package models

import "time"

type Appointment struct {
	ID  uint   `gorm:"primaryKey" json:"id"`
	Ref string `gorm:"size:36;uniqueIndex" json:"ref"`

	PatientID uint `gorm:"index" json:"patient_id"`
	Patient   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"patient"`

	// Unique only while confirmed: a cancelled appointment keeps its slot id
	// for history without blocking the slot from being booked again.
	SlotID uint `gorm:"index:idx_appointments_active_slot,unique,where:status = 'confirmed'" json:"slot_id"`
	Slot   Slot `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"slot"`

	Status string `gorm:"size:20;default:'confirmed'" json:"status"`
	Reason string `gorm:"size:500" json:"reason"`

	// Remote calendar event ids, populated best-effort after commit.
	GoogleEventIDDoctor  string `gorm:"size:255" json:"google_event_id_doctor,omitempty"`
	GoogleEventIDPatient string `gorm:"size:255" json:"google_event_id_patient,omitempty"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
