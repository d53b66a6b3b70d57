package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailabilitySlot is one recurring weekly window in a tutor's schedule.
type AvailabilitySlot struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TutorID   uuid.UUID `gorm:"not null;index" json:"tutor_id"`
	Day       string    `gorm:"size:10;not null" json:"day"`
	StartTime string    `gorm:"size:5;not null" json:"start_time"`
	EndTime   string    `gorm:"size:5;not null" json:"end_time"`
}

func (s *AvailabilitySlot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
