package services

import (
	"github.com/tutorlink/api/models"
	"gorm.io/gorm"
)

// CreditPendingEarnings records the tutor's share of a freshly paid booking.
// Called at the point a payment is finalized, in the same transaction.
func CreditPendingEarnings(tx *gorm.DB, booking *models.Booking) error {
	payout := TutorPayout(booking.Price)
	return tx.Model(&models.User{}).Where("id = ?", booking.TutorID).
		Update("pending_earnings", gorm.Expr("pending_earnings + ?", payout)).Error
}

// SettleBookingEarnings moves a completed, paid booking's payout from
// pending to total and bumps the tutor's completed-booking counter.
func SettleBookingEarnings(tx *gorm.DB, booking *models.Booking) error {
	if booking.PaymentStatus != models.PaymentStatusPaid {
		return nil
	}
	payout := TutorPayout(booking.Price)
	return tx.Model(&models.User{}).Where("id = ?", booking.TutorID).Updates(map[string]interface{}{
		"pending_earnings":   gorm.Expr("pending_earnings - ?", payout),
		"total_earnings":     gorm.Expr("total_earnings + ?", payout),
		"completed_bookings": gorm.Expr("completed_bookings + 1"),
	}).Error
}
