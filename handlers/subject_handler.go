package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/tutorlink/api/cache"
	"github.com/tutorlink/api/models"
	"gorm.io/gorm"
)

type SubjectHandler struct {
	DB    *gorm.DB
	Cache *cache.Store
}

func (h *SubjectHandler) GetSubjects(c *fiber.Ctx) error {
	category := c.Query("category")
	gradeLevel := c.Query("gradeLevel")
	key := fmt.Sprintf("subjects:%s:%s", category, gradeLevel)

	var subjects []models.Subject
	if !h.Cache.GetJSON(c.Context(), key, &subjects) {
		query := h.DB.Model(&models.Subject{})
		if category != "" {
			query = query.Where("category = ?", category)
		}
		if gradeLevel != "" {
			query = query.Where("grade_level = ?", gradeLevel)
		}
		if err := query.Order("name").Find(&subjects).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to load subjects"})
		}
		h.Cache.SetJSON(c.Context(), key, subjects)
	}

	return c.JSON(fiber.Map{"success": true, "count": len(subjects), "data": subjects})
}

func (h *SubjectHandler) GetSubject(c *fiber.Ctx) error {
	var subject models.Subject
	if err := h.DB.First(&subject, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Subject not found"})
	}
	return c.JSON(fiber.Map{"success": true, "data": subject})
}

type SubjectRequest struct {
	Name        string  `json:"name" validate:"required,max=50"`
	GradeLevel  string  `json:"grade_level" validate:"required,max=50"`
	Category    string  `json:"category" validate:"required,oneof=Math Science Language History Arts Technology Other"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

func (h *SubjectHandler) CreateSubject(c *fiber.Ctx) error {
	var req SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	subject := models.Subject{
		Name:        req.Name,
		GradeLevel:  req.GradeLevel,
		Category:    req.Category,
		Description: req.Description,
	}
	if err := h.DB.Create(&subject).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to create subject"})
	}

	h.Cache.Invalidate(c.Context(), "subjects")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": subject})
}

func (h *SubjectHandler) UpdateSubject(c *fiber.Ctx) error {
	var subject models.Subject
	if err := h.DB.First(&subject, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Subject not found"})
	}

	var req SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	subject.Name = req.Name
	subject.GradeLevel = req.GradeLevel
	subject.Category = req.Category
	subject.Description = req.Description
	if err := h.DB.Save(&subject).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update subject"})
	}

	h.Cache.Invalidate(c.Context(), "subjects")
	return c.JSON(fiber.Map{"success": true, "data": subject})
}

func (h *SubjectHandler) DeleteSubject(c *fiber.Ctx) error {
	var subject models.Subject
	if err := h.DB.First(&subject, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Subject not found"})
	}

	if err := h.DB.Delete(&subject).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to delete subject"})
	}

	h.Cache.Invalidate(c.Context(), "subjects")
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
}
