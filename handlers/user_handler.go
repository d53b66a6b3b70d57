package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tutorlink/api/cache"
	"github.com/tutorlink/api/middleware"
	"github.com/tutorlink/api/models"
	"github.com/tutorlink/api/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserHandler struct {
	DB    *gorm.DB
	Cache *cache.Store
}

func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := h.DB.Order("created_at desc").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to load users"})
	}
	return c.JSON(fiber.Map{"success": true, "count": len(users), "data": users})
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	var user models.User
	if err := h.DB.Preload("Subjects").Preload("Availability").
		First(&user, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}
	return c.JSON(fiber.Map{"success": true, "data": user})
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=student tutor admin"`
}

func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to hash password"})
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     req.Role,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to create user"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": user})
}

type UpdateUserRequest struct {
	Name              *string `json:"name" validate:"omitempty,max=50"`
	Bio               *string `json:"bio" validate:"omitempty,max=500"`
	ProfilePictureURL *string `json:"profile_picture_url" validate:"omitempty,max=255"`
	Role              *string `json:"role" validate:"omitempty,oneof=student tutor admin"`
}

func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	callerID := middleware.CurrentUserID(c)
	isAdmin := middleware.CurrentUserRole(c) == models.RoleAdmin
	if user.ID != callerID && !isAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Not authorized to update this user"})
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.ProfilePictureURL != nil {
		user.ProfilePictureURL = req.ProfilePictureURL
	}
	// Role is immutable after creation except by an admin.
	if req.Role != nil && isAdmin {
		user.Role = *req.Role
	}

	if err := h.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update user"})
	}

	h.Cache.Invalidate(c.Context(), "tutors")
	return c.JSON(fiber.Map{"success": true, "data": user})
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	callerID := middleware.CurrentUserID(c)
	if user.ID != callerID && middleware.CurrentUserRole(c) != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Not authorized to delete this user"})
	}

	if err := h.DB.Delete(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to delete user"})
	}

	h.Cache.Invalidate(c.Context(), "tutors")
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
}

func (h *UserHandler) GetTutors(c *fiber.Ctx) error {
	subject := c.Query("subject")
	rating := c.Query("rating")
	price := c.Query("price")
	name := c.Query("name")
	key := fmt.Sprintf("tutors:%s:%s:%s:%s", subject, rating, price, name)

	var tutors []models.User
	if !h.Cache.GetJSON(c.Context(), key, &tutors) {
		query := h.DB.Preload("Subjects").Where("role = ?", models.RoleTutor)

		if subject != "" {
			query = query.Joins("JOIN user_subjects ON user_subjects.user_id = users.id").
				Where("user_subjects.subject_id = ?", subject)
		}
		if rating != "" {
			query = query.Where("average_rating >= ?", rating)
		}
		if price != "" {
			bounds := strings.SplitN(price, "-", 2)
			if bounds[0] != "" {
				query = query.Where("hourly_rate >= ?", bounds[0])
			}
			if len(bounds) == 2 && bounds[1] != "" {
				query = query.Where("hourly_rate <= ?", bounds[1])
			}
		}
		if name != "" {
			query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+name+"%")
		}

		if err := query.Find(&tutors).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to load tutors"})
		}
		h.Cache.SetJSON(c.Context(), key, tutors)
	}

	return c.JSON(fiber.Map{"success": true, "count": len(tutors), "data": tutors})
}

type AvailabilitySlotRequest struct {
	Day       string `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

type TutorProfileRequest struct {
	Bio          *string                   `json:"bio" validate:"omitempty,max=500"`
	HourlyRate   *float64                  `json:"hourly_rate" validate:"omitempty,gt=0"`
	Subjects     []string                  `json:"subjects" validate:"omitempty,dive,uuid"`
	Availability []AvailabilitySlotRequest `json:"availability" validate:"omitempty,dive"`
}

func (h *UserHandler) UpdateTutorProfile(c *fiber.Ctx) error {
	if middleware.CurrentUserRole(c) != models.RoleTutor {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Only tutors can update tutor profiles"})
	}
	tutorID := middleware.CurrentUserID(c)

	var req TutorProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	for _, slot := range req.Availability {
		if err := utils.ValidateTimeRange(slot.StartTime, slot.EndTime); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
		}
	}

	var tutor models.User
	if err := h.DB.First(&tutor, "id = ?", tutorID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if req.Bio != nil {
			tutor.Bio = req.Bio
		}
		if req.HourlyRate != nil {
			tutor.HourlyRate = req.HourlyRate
		}
		if err := tx.Save(&tutor).Error; err != nil {
			return err
		}

		if req.Subjects != nil {
			subjects := make([]*models.Subject, 0, len(req.Subjects))
			for _, raw := range req.Subjects {
				id, _ := uuid.Parse(raw)
				var subject models.Subject
				if err := tx.First(&subject, "id = ?", id).Error; err != nil {
					return err
				}
				subjects = append(subjects, &subject)
			}
			if err := tx.Model(&tutor).Association("Subjects").Replace(subjects); err != nil {
				return err
			}
		}

		if req.Availability != nil {
			if err := tx.Where("tutor_id = ?", tutorID).Delete(&models.AvailabilitySlot{}).Error; err != nil {
				return err
			}
			for _, slot := range req.Availability {
				s := models.AvailabilitySlot{
					TutorID:   tutorID,
					Day:       slot.Day,
					StartTime: slot.StartTime,
					EndTime:   slot.EndTime,
				}
				if err := tx.Create(&s).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Failed to update tutor profile"})
	}

	h.Cache.Invalidate(c.Context(), "tutors")

	if err := h.DB.Preload("Subjects").Preload("Availability").First(&tutor, "id = ?", tutorID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to load tutor profile"})
	}
	return c.JSON(fiber.Map{"success": true, "data": tutor})
}
