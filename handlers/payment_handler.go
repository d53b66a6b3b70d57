package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/tutorlink/api/middleware"
	"github.com/tutorlink/api/models"
	"github.com/tutorlink/api/notifications"
	"github.com/tutorlink/api/payments"
	"github.com/tutorlink/api/services"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	DB       *gorm.DB
	Gateway  payments.Gateway
	Notifier notifications.Notifier
}

// CreatePayment opens a payment intent with the gateway for a booking and
// stores the intent id. The booking is not marked paid until confirmation.
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	var booking models.Booking
	if err := h.DB.First(&booking, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Booking not found"})
	}

	if booking.StudentID != middleware.CurrentUserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Not authorized to make payment for this booking"})
	}

	if booking.PaymentStatus == models.PaymentStatusPaid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "This booking is already paid"})
	}

	intent, err := h.Gateway.CreateIntent(services.ChargeAmountCents(booking.Price), "usd", map[string]string{
		"bookingId": booking.ID.String(),
		"studentId": booking.StudentID.String(),
		"tutorId":   booking.TutorID.String(),
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	booking.PaymentIntentID = &intent.ID
	if err := h.DB.Save(&booking).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update booking"})
	}

	return c.JSON(fiber.Map{"success": true, "client_secret": intent.ClientSecret})
}

// ConfirmPayment reconciles a booking against the gateway-reported intent
// status. Only the succeeded branch advances local state, and it does so
// through a conditional update so a retried or racing confirm is a no-op.
func (h *PaymentHandler) ConfirmPayment(c *fiber.Ctx) error {
	var booking models.Booking
	if err := h.DB.First(&booking, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Booking not found"})
	}

	if booking.StudentID != middleware.CurrentUserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Not authorized to confirm payment for this booking"})
	}

	if booking.PaymentStatus == models.PaymentStatusPaid {
		return c.JSON(fiber.Map{"success": true, "message": "Payment already confirmed", "data": booking})
	}

	if booking.PaymentIntentID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "No payment intent found for this booking"})
	}

	intent, err := h.Gateway.RetrieveIntent(*booking.PaymentIntentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	switch intent.Status {
	case payments.IntentStatusSucceeded:
		applied, err := h.markPaid(&booking)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to confirm payment"})
		}
		if applied {
			go h.sendPaymentConfirmation(booking)
		}
		return c.JSON(fiber.Map{"success": true, "message": "Payment confirmed successfully", "data": booking})

	case payments.IntentStatusRequiresPaymentMethod:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Payment method not provided. Please add a payment method."})

	case payments.IntentStatusRequiresConfirmation:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Payment requires additional confirmation. Please retry."})

	case payments.IntentStatusRequiresAction:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":       false,
			"message":       "Payment requires additional action. Please complete the payment process.",
			"client_secret": intent.ClientSecret,
		})

	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": fmt.Sprintf("Unhandled payment status: %s", intent.Status)})
	}
}

// markPaid performs the guarded paid+confirmed transition. Returns false
// when another request already applied it.
func (h *PaymentHandler) markPaid(booking *models.Booking) (bool, error) {
	applied := false
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND payment_status <> ?", booking.ID, models.PaymentStatusPaid).
			Updates(map[string]interface{}{
				"payment_status": models.PaymentStatusPaid,
				"status":         models.BookingStatusConfirmed,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		return services.CreditPendingEarnings(tx, booking)
	})
	if err != nil {
		return false, err
	}
	booking.PaymentStatus = models.PaymentStatusPaid
	booking.Status = models.BookingStatusConfirmed
	return applied, nil
}

func (h *PaymentHandler) sendPaymentConfirmation(booking models.Booking) {
	var student models.User
	if err := h.DB.First(&student, "id = ?", booking.StudentID).Error; err != nil {
		return
	}
	h.Notifier.SendPaymentConfirmation(student.Email, student.Name, notifications.PaymentDetails{
		Amount:    booking.Price,
		BookingID: booking.ID.String(),
	})
}

// ProcessDirectPayment marks a booking paid without a gateway round-trip.
// Admin-only manual override for payments settled out of band.
func (h *PaymentHandler) ProcessDirectPayment(c *fiber.Ctx) error {
	var booking models.Booking
	if err := h.DB.Preload("Student").Preload("Tutor").Preload("Subject").
		First(&booking, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Booking not found"})
	}

	if booking.PaymentStatus == models.PaymentStatusPaid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "This booking is already paid"})
	}

	applied, err := h.markPaid(&booking)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error processing payment"})
	}

	if applied {
		go func(b models.Booking) {
			details := notifications.BookingDetails{
				StudentName: b.Student.Name,
				TutorName:   b.Tutor.Name,
				Subject:     b.Subject.Name,
				Date:        b.Date.Format("2006-01-02"),
				StartTime:   b.StartTime,
				EndTime:     b.EndTime,
			}
			h.Notifier.SendPaymentConfirmation(b.Student.Email, b.Student.Name, notifications.PaymentDetails{
				Amount:    b.Price,
				BookingID: b.ID.String(),
			})
			h.Notifier.SendBookingConfirmation(b.Student.Email, b.Student.Name, details)
			h.Notifier.SendNewBookingNotification(b.Tutor.Email, b.Tutor.Name, details)
		}(booking)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Payment processed successfully", "data": booking})
}
