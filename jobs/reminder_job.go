package jobs

import (
	"log"
	"time"

	"github.com/tutorlink/api/models"
	"github.com/tutorlink/api/notifications"
	"github.com/tutorlink/api/utils"
)

// SendSessionReminders emails both parties of confirmed bookings starting
// within the next hour. Each booking is reminded at most once.
func (j *Jobs) SendSessionReminders() {
	log.Println("Running job: SendSessionReminders...")

	var upcoming []models.Booking
	err := j.DB.Preload("Student").Preload("Tutor").Preload("Subject").
		Where("status = ? AND reminder_sent = ? AND date BETWEEN ? AND ?",
			models.BookingStatusConfirmed, false,
			time.Now().Add(-24*time.Hour), time.Now().Add(24*time.Hour)).
		Find(&upcoming).Error
	if err != nil {
		log.Printf("Error loading bookings for reminders: %v", err)
		return
	}

	now := time.Now()
	sent := 0
	for i := range upcoming {
		booking := upcoming[i]
		start := utils.SessionStart(booking.Date, booking.StartTime)
		if start.Before(now) || start.After(now.Add(time.Hour)) {
			continue
		}

		details := notifications.BookingDetails{
			StudentName: booking.Student.Name,
			TutorName:   booking.Tutor.Name,
			Subject:     booking.Subject.Name,
			Date:        booking.Date.Format("2006-01-02"),
			StartTime:   booking.StartTime,
			EndTime:     booking.EndTime,
		}
		j.Notifier.SendBookingConfirmation(booking.Student.Email, booking.Student.Name, details)
		j.Notifier.SendNewBookingNotification(booking.Tutor.Email, booking.Tutor.Name, details)

		if err := j.DB.Model(&models.Booking{}).Where("id = ?", booking.ID).
			Update("reminder_sent", true).Error; err != nil {
			log.Printf("Error flagging reminder for booking %s: %v", booking.ID, err)
			continue
		}
		sent++
	}

	if sent > 0 {
		log.Printf("Sent reminders for %d booking(s).", sent)
	}
}
