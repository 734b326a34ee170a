package repository

import (
	"edulearn_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

// Create persists the quiz together with its nested questions and options.
func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("questions.id") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("options.id") }).
		First(&quiz, id).Error
	return &quiz, err
}

func (r *QuizRepository) FindAll(page, limit int) ([]model.Quiz, int64, error) {
	var total int64
	if err := r.DB.Model(&model.Quiz{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quizzes []model.Quiz
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("questions.id") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("options.id") }).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&quizzes).Error
	return quizzes, total, err
}

func (r *QuizRepository) FindByCreator(creatorID uint, page, limit int) ([]model.Quiz, int64, error) {
	query := r.DB.Model(&model.Quiz{}).Where("created_by_id = ?", creatorID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quizzes []model.Quiz
	err := r.DB.Where("created_by_id = ?", creatorID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("questions.id") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("options.id") }).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&quizzes).Error
	return quizzes, total, err
}

func (r *QuizRepository) Delete(quiz *model.Quiz) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id IN (?)",
			tx.Model(&model.Question{}).Select("id").Where("quiz_id = ?", quiz.ID),
		).Delete(&model.Option{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(quiz).Error
	})
}
