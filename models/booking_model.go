package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

type Booking struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StudentID uuid.UUID `gorm:"not null;index" json:"student_id"`
	TutorID   uuid.UUID `gorm:"not null;index" json:"tutor_id"`
	SubjectID uuid.UUID `gorm:"not null" json:"subject_id"`

	Date      time.Time `gorm:"not null" json:"date"`
	StartTime string    `gorm:"size:5;not null" json:"start_time"`
	EndTime   string    `gorm:"size:5;not null" json:"end_time"`
	Duration  float64   `gorm:"not null" json:"duration"`

	Status          string  `gorm:"size:20;not null;default:'pending'" json:"status"`
	Price           float64 `gorm:"type:numeric(10,2);not null" json:"price"`
	PaymentStatus   string  `gorm:"size:20;not null;default:'pending'" json:"payment_status"`
	PaymentIntentID *string `gorm:"size:255" json:"payment_intent_id,omitempty"`
	Notes           *string `gorm:"size:500" json:"notes,omitempty"`

	ReminderSent bool `gorm:"default:false" json:"-"`

	Student User    `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	Tutor   User    `gorm:"foreignkey:TutorID" json:"tutor,omitempty"`
	Subject Subject `gorm:"foreignkey:SubjectID" json:"subject,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
