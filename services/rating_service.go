package services

import (
	"github.com/google/uuid"
	"github.com/tutorlink/api/models"
	"gorm.io/gorm"
)

// RecalculateTutorRating recomputes a tutor's aggregate rating fields from
// the full current review set. Run inside the transaction that created or
// removed the triggering review so the aggregate is never observably stale.
func RecalculateTutorRating(tx *gorm.DB, tutorID uuid.UUID) error {
	var result struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&models.Review{}).
		Where("tutor_id = ?", tutorID).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Scan(&result).Error
	if err != nil {
		return err
	}

	return tx.Model(&models.User{}).Where("id = ?", tutorID).Updates(map[string]interface{}{
		"average_rating": Round1(result.Avg),
		"total_reviews":  result.Count,
	}).Error
}
