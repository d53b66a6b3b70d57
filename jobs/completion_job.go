package jobs

import (
	"log"
	"time"

	"github.com/tutorlink/api/models"
	"github.com/tutorlink/api/notifications"
	"github.com/tutorlink/api/services"
	"github.com/tutorlink/api/utils"
	"gorm.io/gorm"
)

type Jobs struct {
	DB       *gorm.DB
	Notifier notifications.Notifier
}

// CompleteElapsedSessions marks paid, confirmed bookings whose session end
// has passed as completed and settles the tutor's earnings.
func (j *Jobs) CompleteElapsedSessions() {
	log.Println("Running job: CompleteElapsedSessions...")

	var candidates []models.Booking
	err := j.DB.
		Where("status = ? AND payment_status = ? AND date <= ?",
			models.BookingStatusConfirmed, models.PaymentStatusPaid, time.Now()).
		Find(&candidates).Error
	if err != nil {
		log.Printf("Error loading bookings for completion sweep: %v", err)
		return
	}

	completed := 0
	now := time.Now()
	for i := range candidates {
		booking := candidates[i]
		if utils.SessionEnd(booking.Date, booking.EndTime).After(now) {
			continue
		}

		err := j.DB.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Booking{}).
				Where("id = ? AND status = ?", booking.ID, models.BookingStatusConfirmed).
				Update("status", models.BookingStatusCompleted)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			booking.Status = models.BookingStatusCompleted
			return services.SettleBookingEarnings(tx, &booking)
		})
		if err != nil {
			log.Printf("Error completing booking %s: %v", booking.ID, err)
			continue
		}
		completed++
	}

	if completed > 0 {
		log.Printf("Marked %d booking(s) as completed.", completed)
	}
}
