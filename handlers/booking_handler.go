package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tutorlink/api/middleware"
	"github.com/tutorlink/api/models"
	"github.com/tutorlink/api/notifications"
	"github.com/tutorlink/api/payments"
	"github.com/tutorlink/api/services"
	"github.com/tutorlink/api/utils"
	"gorm.io/gorm"
)

type BookingHandler struct {
	DB       *gorm.DB
	Gateway  payments.Gateway
	Notifier notifications.Notifier
}

type CreateBookingRequest struct {
	TutorID   string  `json:"tutor" validate:"required,uuid"`
	SubjectID string  `json:"subject" validate:"required,uuid"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string  `json:"start_time" validate:"required"`
	EndTime   string  `json:"end_time" validate:"required"`
	Duration  float64 `json:"duration" validate:"required,gt=0"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	if middleware.CurrentUserRole(c) != models.RoleStudent {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Only students can create bookings"})
	}
	studentID := middleware.CurrentUserID(c)

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	if err := utils.ValidateTimeRange(req.StartTime, req.EndTime); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	tutorID, _ := uuid.Parse(req.TutorID)
	subjectID, _ := uuid.Parse(req.SubjectID)

	var tutor models.User
	if err := h.DB.First(&tutor, "id = ?", tutorID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Tutor not found"})
	}
	if tutor.Role != models.RoleTutor {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Selected user is not a tutor"})
	}

	var subject models.Subject
	if err := h.DB.First(&subject, "id = ?", subjectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Subject not found"})
	}

	date, _ := time.Parse("2006-01-02", req.Date)

	booking := models.Booking{
		StudentID: studentID,
		TutorID:   tutorID,
		SubjectID: subjectID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Duration:  req.Duration,
		Price:     services.SessionPrice(tutor.HourlyRate, req.Duration),
		Notes:     req.Notes,
	}
	if err := h.DB.Create(&booking).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to create booking"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": booking})
}

func (h *BookingHandler) GetBookings(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	query := h.DB.Preload("Student").Preload("Tutor").Preload("Subject")
	switch middleware.CurrentUserRole(c) {
	case models.RoleStudent:
		query = query.Where("student_id = ?", userID)
	case models.RoleTutor:
		query = query.Where("tutor_id = ?", userID)
	}

	var bookings []models.Booking
	if err := query.Order("created_at desc").Find(&bookings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to load bookings"})
	}

	return c.JSON(fiber.Map{"success": true, "count": len(bookings), "data": bookings})
}

func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	var booking models.Booking
	if err := h.DB.Preload("Student").Preload("Tutor").Preload("Subject").
		First(&booking, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Booking not found"})
	}

	userID := middleware.CurrentUserID(c)
	if booking.StudentID != userID && booking.TutorID != userID && middleware.CurrentUserRole(c) != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Not authorized to access this booking"})
	}

	return c.JSON(fiber.Map{"success": true, "data": booking})
}

type UpdateBookingRequest struct {
	Status    *string `json:"status" validate:"omitempty,oneof=confirmed completed cancelled"`
	Date      *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

func (h *BookingHandler) UpdateBooking(c *fiber.Ctx) error {
	var booking models.Booking
	if err := h.DB.First(&booking, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Booking not found"})
	}

	var req UpdateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	userID := middleware.CurrentUserID(c)
	role := middleware.CurrentUserRole(c)
	isAdmin := role == models.RoleAdmin
	if booking.StudentID != userID && booking.TutorID != userID && !isAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Not authorized to update this booking"})
	}

	settleEarnings := false
	if req.Status != nil {
		switch *req.Status {
		case models.BookingStatusConfirmed:
			if booking.TutorID != userID {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Only the tutor can confirm a booking"})
			}
			if booking.Status != models.BookingStatusPending {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Only pending bookings can be confirmed"})
			}
			booking.Status = models.BookingStatusConfirmed

		case models.BookingStatusCancelled:
			if booking.StudentID != userID {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Only the student can cancel a booking"})
			}
			if booking.Status == models.BookingStatusCompleted || booking.Status == models.BookingStatusCancelled {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "This booking can no longer be cancelled"})
			}
			// The booking record is the source of truth; the gateway call is a
			// best-effort side effect and never blocks the cancellation.
			if booking.PaymentIntentID != nil {
				h.releasePayment(&booking)
			}
			booking.Status = models.BookingStatusCancelled

		case models.BookingStatusCompleted:
			if booking.TutorID != userID && !isAdmin {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Only the tutor can complete a booking"})
			}
			if booking.Status != models.BookingStatusConfirmed {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Only confirmed bookings can be marked as complete"})
			}
			booking.Status = models.BookingStatusCompleted
			settleEarnings = true
		}
	}

	// Field edits are reserved for the booking's student or an admin; a
	// tutor's update request carries the status transition only.
	if booking.StudentID == userID || isAdmin {
		if req.Date != nil {
			date, _ := time.Parse("2006-01-02", *req.Date)
			booking.Date = date
		}
		if req.StartTime != nil {
			booking.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			booking.EndTime = *req.EndTime
		}
		if req.StartTime != nil || req.EndTime != nil {
			if err := utils.ValidateTimeRange(booking.StartTime, booking.EndTime); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
			}
		}
		if req.Notes != nil {
			booking.Notes = req.Notes
		}
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&booking).Error; err != nil {
			return err
		}
		if settleEarnings {
			return services.SettleBookingEarnings(tx, &booking)
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update booking"})
	}

	return c.JSON(fiber.Map{"success": true, "data": booking})
}

// releasePayment undoes the gateway-side charge for a cancelled booking:
// unpaid intents are cancelled, paid ones refunded. Exactly one call either way.
func (h *BookingHandler) releasePayment(booking *models.Booking) {
	intentID := *booking.PaymentIntentID
	if booking.PaymentStatus == models.PaymentStatusPaid {
		if err := h.Gateway.Refund(intentID, 0, "requested_by_customer"); err != nil {
			log.Printf("🔥 Failed to refund payment intent %s for booking %s: %v", intentID, booking.ID, err)
		}
		return
	}
	if err := h.Gateway.CancelIntent(intentID); err != nil {
		log.Printf("🔥 Failed to cancel payment intent %s for booking %s: %v", intentID, booking.ID, err)
	}
}

func (h *BookingHandler) DeleteBooking(c *fiber.Ctx) error {
	if middleware.CurrentUserRole(c) != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Only admin can delete bookings"})
	}

	var booking models.Booking
	if err := h.DB.First(&booking, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Booking not found"})
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		// Reviews reference the booking; drop them with it and keep the
		// tutor's rating aggregate consistent.
		var count int64
		if err := tx.Model(&models.Review{}).Where("booking_id = ?", booking.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.Review{}).Error; err != nil {
				return err
			}
			if err := services.RecalculateTutorRating(tx, booking.TutorID); err != nil {
				return err
			}
		}
		return tx.Delete(&booking).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to delete booking"})
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
}

func (h *BookingHandler) GetTutorAvailability(c *fiber.Ctx) error {
	tutorID, err := uuid.Parse(c.Params("tutorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid tutor ID"})
	}

	var tutor models.User
	if err := h.DB.Preload("Availability").First(&tutor, "id = ? AND role = ?", tutorID, models.RoleTutor).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Tutor not found"})
	}

	return c.JSON(fiber.Map{"success": true, "data": tutor.Availability})
}
