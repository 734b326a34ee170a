package repository

import (
	"edulearn_backend/internal/model"

	"gorm.io/gorm"
)

type RemarkRepository struct {
	DB *gorm.DB
}

func NewRemarkRepository(db *gorm.DB) *RemarkRepository {
	return &RemarkRepository{DB: db}
}

func (r *RemarkRepository) Create(remark *model.Remark) error {
	return r.DB.Create(remark).Error
}

func (r *RemarkRepository) FindByStudent(studentID uint, page, limit int) ([]model.Remark, int64, error) {
	return r.findBy("student_id", studentID, page, limit)
}

func (r *RemarkRepository) FindByFaculty(facultyID uint, page, limit int) ([]model.Remark, int64, error) {
	return r.findBy("faculty_id", facultyID, page, limit)
}

func (r *RemarkRepository) findBy(column string, id uint, page, limit int) ([]model.Remark, int64, error) {
	query := r.DB.Model(&model.Remark{}).Where(column+" = ?", id)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var remarks []model.Remark
	err := r.DB.Where(column+" = ?", id).
		Preload("Student").
		Preload("Faculty").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&remarks).Error
	return remarks, total, err
}
