package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review references exactly one booking. The unique index on BookingID is
// what enforces the one-review-per-booking rule at the storage level.
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BookingID uuid.UUID `gorm:"not null;unique" json:"booking_id"`
	StudentID uuid.UUID `gorm:"not null;index" json:"student_id"`
	TutorID   uuid.UUID `gorm:"not null;index" json:"tutor_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"size:500" json:"comment"`

	Booking Booking `gorm:"foreignkey:BookingID" json:"booking,omitempty"`
	Student User    `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	Tutor   User    `gorm:"foreignkey:TutorID" json:"tutor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
