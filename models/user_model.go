package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleTutor   = "tutor"
	RoleAdmin   = "admin"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name     string    `gorm:"size:50;not null" json:"name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"size:20;not null;default:'student'" json:"role"`

	Bio               *string `gorm:"size:500" json:"bio,omitempty"`
	ProfilePictureURL *string `gorm:"size:255" json:"profile_picture_url,omitempty"`

	// Tutor attributes. Zero values for students and admins.
	HourlyRate        *float64           `gorm:"type:numeric(10,2)" json:"hourly_rate,omitempty"`
	AverageRating     float64            `gorm:"type:numeric(2,1);default:0" json:"average_rating"`
	TotalReviews      int                `gorm:"default:0" json:"total_reviews"`
	TotalEarnings     float64            `gorm:"type:numeric(10,2);default:0.00" json:"total_earnings"`
	PendingEarnings   float64            `gorm:"type:numeric(10,2);default:0.00" json:"pending_earnings"`
	CompletedBookings int                `gorm:"default:0" json:"completed_bookings"`
	Subjects          []*Subject         `gorm:"many2many:user_subjects;" json:"subjects,omitempty"`
	Availability      []AvailabilitySlot `gorm:"foreignkey:TutorID" json:"availability,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
