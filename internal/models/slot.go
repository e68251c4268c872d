package models

import "time"

type Slot struct {
	ID  uint   `gorm:"primaryKey" json:"id"`
	Ref string `gorm:"size:36;uniqueIndex" json:"ref"`

	DoctorID uint `gorm:"index:idx_slots_doctor_start" json:"doctor_id"`
	Doctor   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"doctor"`

	StartTime time.Time `gorm:"index:idx_slots_doctor_start" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Booked bool `gorm:"default:false" json:"booked"`

	// Version is bumped on every booked-flag mutation. Mutual exclusion is
	// enforced by the row lock; the counter exists so the store could move
	// to optimistic retry without a migration.
	Version uint `gorm:"default:0" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
