package repository

import (
	"edulearn_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) ExistsByUserAndQuiz(userID, quizID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error
	return count > 0, err
}

func (r *AttemptRepository) FindByID(id uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.Preload("Quiz").Preload("Answers").First(&attempt, id).Error
	return &attempt, err
}

// FindByUserOrdered lists a student's attempts newest first, with the quiz
// preloaded for title/reward lookups.
func (r *AttemptRepository) FindByUserOrdered(userID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	query := r.DB.Model(&model.QuizAttempt{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var attempts []model.QuizAttempt
	err := r.DB.Where("user_id = ?", userID).
		Preload("Quiz").
		Order("attempted_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}
