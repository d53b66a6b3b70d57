package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tutorlink/api/middleware"
	"github.com/tutorlink/api/models"
	"github.com/tutorlink/api/services"
	"gorm.io/gorm"
)

type ReviewHandler struct {
	DB *gorm.DB
}

func (h *ReviewHandler) GetReviews(c *fiber.Ctx) error {
	query := h.DB.Preload("Student").Preload("Tutor").Preload("Booking")
	if tutor := c.Query("tutor"); tutor != "" {
		query = query.Where("tutor_id = ?", tutor)
	}

	var reviews []models.Review
	if err := query.Order("created_at desc").Find(&reviews).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to load reviews"})
	}

	return c.JSON(fiber.Map{"success": true, "count": len(reviews), "data": reviews})
}

func (h *ReviewHandler) GetReview(c *fiber.Ctx) error {
	var review models.Review
	if err := h.DB.Preload("Student").Preload("Tutor").Preload("Booking").
		First(&review, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Review not found"})
	}
	return c.JSON(fiber.Map{"success": true, "data": review})
}

type CreateReviewRequest struct {
	BookingID string `json:"booking" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"required,max=500"`
}

func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	if middleware.CurrentUserRole(c) != models.RoleStudent {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Only students can create reviews"})
	}
	studentID := middleware.CurrentUserID(c)

	var req CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	bookingID, _ := uuid.Parse(req.BookingID)

	var booking models.Booking
	if err := h.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Booking not found"})
	}
	if booking.StudentID != studentID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "You can only review bookings you made"})
	}
	if booking.Status != models.BookingStatusCompleted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "You can only review completed bookings"})
	}

	var existing models.Review
	if err := h.DB.Where("student_id = ? AND booking_id = ?", studentID, bookingID).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "You have already reviewed this booking"})
	}

	// The tutor reference is copied from the booking, never from the client.
	review := models.Review{
		BookingID: booking.ID,
		StudentID: studentID,
		TutorID:   booking.TutorID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return services.RecalculateTutorRating(tx, booking.TutorID)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to create review"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": review})
}

// UpdateReviewRequest deliberately has no booking/student/tutor fields;
// attempts to move a review between entities are silently dropped.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=500"`
}

func (h *ReviewHandler) UpdateReview(c *fiber.Ctx) error {
	var review models.Review
	if err := h.DB.First(&review, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Review not found"})
	}

	userID := middleware.CurrentUserID(c)
	if review.StudentID != userID && middleware.CurrentUserRole(c) != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Not authorized to update this review"})
	}

	var req UpdateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	ratingChanged := false
	if req.Rating != nil && *req.Rating != review.Rating {
		review.Rating = *req.Rating
		ratingChanged = true
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&review).Error; err != nil {
			return err
		}
		if ratingChanged {
			return services.RecalculateTutorRating(tx, review.TutorID)
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update review"})
	}

	return c.JSON(fiber.Map{"success": true, "data": review})
}

func (h *ReviewHandler) DeleteReview(c *fiber.Ctx) error {
	var review models.Review
	if err := h.DB.First(&review, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Review not found"})
	}

	userID := middleware.CurrentUserID(c)
	if review.StudentID != userID && middleware.CurrentUserRole(c) != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Not authorized to delete this review"})
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return services.RecalculateTutorRating(tx, review.TutorID)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to delete review"})
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
}
