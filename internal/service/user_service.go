package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"edulearn_backend/internal/model"
	"edulearn_backend/internal/repository"
	"edulearn_backend/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	UserRepo   *repository.UserRepository
	RemarkRepo *repository.RemarkRepository
	DB         *gorm.DB
	Storage    StorageProvider
}

func NewUserService(userRepo *repository.UserRepository, remarkRepo *repository.RemarkRepository, db *gorm.DB, storage StorageProvider) *UserService {
	return &UserService{
		UserRepo:   userRepo,
		RemarkRepo: remarkRepo,
		DB:         db,
		Storage:    storage,
	}
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
}

type RemarkRequest struct {
	StudentID  uint   `json:"studentId" binding:"required"`
	RemarkText string `json:"remarkText" binding:"required"`
}

type RemarkResponse struct {
	ID          uint   `json:"id"`
	RemarkText  string `json:"remarkText"`
	StudentName string `json:"studentName"`
	FacultyName string `json:"facultyName"`
	CreatedAt   string `json:"createdAt"`
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if req.Email != "" && req.Email != user.Email {
		if _, err := s.UserRepo.FindByEmail(req.Email); err == nil {
			return nil, util.ErrEmailRegistered
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = req.Email
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Phone = req.Phone

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// AddCustomQuizXP credits XP earned on an ephemeral AI quiz. Those quizzes
// are never persisted, so the award is the only trace they leave.
func (s *UserService) AddCustomQuizXP(userID uint, xpEarned int) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if user.Role != model.Student {
		return nil, util.ErrNotAStudent
	}

	if err := s.DB.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("xp", gorm.Expr("xp + ?", xpEarned)).
		Error; err != nil {
		return nil, err
	}

	user.XP += xpEarned
	return user, nil
}

func (s *UserService) GetStudents(page, limit int, search string) ([]model.User, int64, error) {
	return s.UserRepo.FindStudents(page, limit, search)
}

// AddRemark records faculty feedback for a student. The target must hold
// the STUDENT role.
func (s *UserService) AddRemark(facultyID uint, req RemarkRequest) (*RemarkResponse, error) {
	student, err := s.UserRepo.FindByID(req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	if student.Role != model.Student {
		return nil, util.ErrNotAStudent
	}

	faculty, err := s.UserRepo.FindByID(facultyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	remark := &model.Remark{
		RemarkText: req.RemarkText,
		StudentID:  student.ID,
		FacultyID:  faculty.ID,
	}
	if err := s.RemarkRepo.Create(remark); err != nil {
		return nil, err
	}

	remark.Student = student
	remark.Faculty = faculty
	res := toRemarkResponse(remark)
	return &res, nil
}

func (s *UserService) GetStudentRemarks(studentID uint, page, limit int) ([]RemarkResponse, int64, error) {
	remarks, total, err := s.RemarkRepo.FindByStudent(studentID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toRemarkResponses(remarks), total, nil
}

func (s *UserService) GetFacultyRemarks(facultyID uint, page, limit int) ([]RemarkResponse, int64, error) {
	remarks, total, err := s.RemarkRepo.FindByFaculty(facultyID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toRemarkResponses(remarks), total, nil
}

// UploadAvatar stores the image through the configured storage provider
// and saves the resulting URL on the profile.
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, file *multipart.FileHeader) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	objectName := fmt.Sprintf("avatars/%d/%s%s", userID, uuid.New().String(), fileExt(file.Filename))
	url, err := s.Storage.Upload(ctx, objectName, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	user.Avatar = url
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func fileExt(name string) string {
	for i := len(name) - 1; i >= 0 && name[i] != '/'; i-- {
		if name[i] == '.' {
			return name[i:]
		}
	}
	return ""
}

func toRemarkResponse(remark *model.Remark) RemarkResponse {
	res := RemarkResponse{
		ID:         remark.ID,
		RemarkText: remark.RemarkText,
		CreatedAt:  remark.CreatedAt.Format(time.RFC3339),
	}
	if remark.Student != nil {
		res.StudentName = displayName(remark.Student)
	}
	if remark.Faculty != nil {
		res.FacultyName = displayName(remark.Faculty)
	}
	return res
}

func toRemarkResponses(remarks []model.Remark) []RemarkResponse {
	res := make([]RemarkResponse, len(remarks))
	for i := range remarks {
		res[i] = toRemarkResponse(&remarks[i])
	}
	return res
}

func displayName(user *model.User) string {
	if user.FirstName == "" && user.LastName == "" {
		return user.Username
	}
	if user.LastName == "" {
		return user.FirstName
	}
	return user.FirstName + " " + user.LastName
}
