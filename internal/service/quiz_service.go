package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"edulearn_backend/internal/model"
	"edulearn_backend/internal/repository"
	"edulearn_backend/internal/util"
	"edulearn_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	passingPercentage    = 60.0
	leaderboardKeyPrefix = "leaderboard:"
	leaderboardCacheTTL  = 30 * time.Second
)

type QuizService struct {
	QuizRepo    *repository.QuizRepository
	AttemptRepo *repository.AttemptRepository
	UserRepo    *repository.UserRepository
	DB          *gorm.DB
	Redis       *redis.Client
}

func NewQuizService(
	quizRepo *repository.QuizRepository,
	attemptRepo *repository.AttemptRepository,
	userRepo *repository.UserRepository,
	db *gorm.DB,
	rdb *redis.Client,
) *QuizService {
	return &QuizService{
		QuizRepo:    quizRepo,
		AttemptRepo: attemptRepo,
		UserRepo:    userRepo,
		DB:          db,
		Redis:       rdb,
	}
}

type OptionRequest struct {
	OptionText string `json:"optionText" binding:"required"`
	IsCorrect  *bool  `json:"isCorrect"`
}

type QuestionRequest struct {
	QuestionText string          `json:"questionText" binding:"required"`
	Options      []OptionRequest `json:"options" binding:"required,min=2"`
}

type QuizRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	XPReward    *int              `json:"xpReward"`
	Questions   []QuestionRequest `json:"questions" binding:"required,min=1"`
}

// OptionResponse is the grading/authoring view of an option. Student-facing
// quiz views use StudentOptionResponse instead, which never carries the
// isCorrect flag.
type OptionResponse struct {
	ID         int64  `json:"id"`
	OptionText string `json:"optionText"`
	IsCorrect  bool   `json:"isCorrect"`
}

type QuestionResponse struct {
	ID           int64            `json:"id"`
	QuestionText string           `json:"questionText"`
	Marks        int              `json:"marks"`
	Options      []OptionResponse `json:"options"`
}

type QuizResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	XPReward    int                `json:"xpReward"`
	TotalMarks  int                `json:"totalMarks"`
	CreatedAt   string             `json:"createdAt,omitempty"`
	Questions   []QuestionResponse `json:"questions"`
}

type StudentOptionResponse struct {
	ID         int64  `json:"id"`
	OptionText string `json:"optionText"`
}

type StudentQuestionResponse struct {
	ID           int64                   `json:"id"`
	QuestionText string                  `json:"questionText"`
	Marks        int                     `json:"marks"`
	Options      []StudentOptionResponse `json:"options"`
}

type StudentQuizResponse struct {
	ID          int64                     `json:"id"`
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	XPReward    int                       `json:"xpReward"`
	TotalMarks  int                       `json:"totalMarks"`
	CreatedAt   string                    `json:"createdAt,omitempty"`
	Questions   []StudentQuestionResponse `json:"questions"`
}

type AnswerRequest struct {
	QuestionID       uint  `json:"questionId" binding:"required"`
	SelectedOptionID *uint `json:"selectedOptionId"`
}

type AttemptRequest struct {
	QuizID  uint            `json:"quizId" binding:"required"`
	Answers []AnswerRequest `json:"answers"`
}

type QuizResultResponse struct {
	AttemptID   uint    `json:"attemptId"`
	QuizTitle   string  `json:"quizTitle"`
	Score       int     `json:"score"`
	TotalMarks  int     `json:"totalMarks"`
	XPEarned    int     `json:"xpEarned"`
	Percentage  float64 `json:"percentage"`
	Status      string  `json:"status"`
	AttemptedAt string  `json:"attemptedAt"`
}

// CreateQuiz persists a faculty-authored quiz. Every question is worth one
// mark and totalMarks is recomputed from the question count, never taken
// from the request.
func (s *QuizService) CreateQuiz(facultyID uint, req QuizRequest) (*model.Quiz, error) {
	xpReward := 100
	if req.XPReward != nil {
		xpReward = *req.XPReward
	}

	quiz := &model.Quiz{
		Title:       req.Title,
		Description: req.Description,
		XPReward:    xpReward,
		CreatedByID: facultyID,
	}

	for _, qReq := range req.Questions {
		question := model.Question{
			QuestionText: qReq.QuestionText,
			Marks:        1,
		}
		for _, oReq := range qReq.Options {
			isCorrect := false
			if oReq.IsCorrect != nil {
				isCorrect = *oReq.IsCorrect
			}
			question.Options = append(question.Options, model.Option{
				OptionText: oReq.OptionText,
				IsCorrect:  isCorrect,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
		quiz.TotalMarks += question.Marks
	}

	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) GetAllQuizzes(page, limit int) ([]StudentQuizResponse, int64, error) {
	quizzes, total, err := s.QuizRepo.FindAll(page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]StudentQuizResponse, len(quizzes))
	for i := range quizzes {
		res[i] = toStudentQuizResponse(&quizzes[i])
	}
	return res, total, nil
}

func (s *QuizService) GetQuizForStudent(id uint) (*StudentQuizResponse, error) {
	quiz, err := s.QuizRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	res := toStudentQuizResponse(quiz)
	return &res, nil
}

func (s *QuizService) GetFacultyQuizzes(facultyID uint, page, limit int) ([]QuizResponse, int64, error) {
	quizzes, total, err := s.QuizRepo.FindByCreator(facultyID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]QuizResponse, len(quizzes))
	for i := range quizzes {
		res[i] = toQuizResponse(&quizzes[i])
	}
	return res, total, nil
}

func (s *QuizService) DeleteQuiz(quizID, facultyID uint) error {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuizNotFound
		}
		return err
	}

	if quiz.CreatedByID != facultyID {
		return util.ErrPermissionDenied
	}

	return s.QuizRepo.Delete(quiz)
}

// SubmitAttempt grades a student's answer set against the quiz and commits
// the attempt, its answers and the XP award as one transaction. A repeat
// submission is rejected up front, and the composite unique index on
// quiz_attempts backstops the check under concurrent submissions.
func (s *QuizService) SubmitAttempt(userID uint, req AttemptRequest) (*QuizResultResponse, error) {
	student, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	quiz, err := s.QuizRepo.FindByID(req.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	attempted, err := s.AttemptRepo.ExistsByUserAndQuiz(student.ID, quiz.ID)
	if err != nil {
		return nil, err
	}
	if attempted {
		return nil, util.ErrQuizAlreadyAttempted
	}

	questionMap := make(map[uint]*model.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		questionMap[quiz.Questions[i].ID] = &quiz.Questions[i]
	}

	totalScore := 0
	answers := make([]model.Answer, 0, len(req.Answers))
	for _, ansReq := range req.Answers {
		question, ok := questionMap[ansReq.QuestionID]
		if !ok {
			// question id from another quiz: reject before any write
			return nil, util.ErrQuestionNotFound
		}

		answer := model.Answer{QuestionID: question.ID}

		if ansReq.SelectedOptionID != nil {
			var selected *model.Option
			for i := range question.Options {
				if question.Options[i].ID == *ansReq.SelectedOptionID {
					selected = &question.Options[i]
					break
				}
			}
			if selected == nil {
				return nil, util.ErrOptionNotFound
			}

			answer.SelectedOptionID = ansReq.SelectedOptionID
			answer.IsCorrect = selected.IsCorrect
			if selected.IsCorrect {
				answer.MarksObtained = question.Marks
				totalScore += question.Marks
			}
		}

		answers = append(answers, answer)
	}

	percentage := 0.0
	if quiz.TotalMarks > 0 {
		percentage = float64(totalScore) / float64(quiz.TotalMarks) * 100
	}
	xpEarned := int(float64(quiz.XPReward) * percentage / 100)

	attempt := &model.QuizAttempt{
		UserID:     student.ID,
		QuizID:     quiz.ID,
		Score:      totalScore,
		TotalMarks: quiz.TotalMarks,
		Answers:    answers,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			if isDuplicateKeyError(err) {
				return util.ErrQuizAlreadyAttempted
			}
			return err
		}
		return tx.Model(&model.User{}).
			Where("id = ?", student.ID).
			Update("xp", gorm.Expr("xp + ?", xpEarned)).
			Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidateLeaderboard()

	return &QuizResultResponse{
		AttemptID:   attempt.ID,
		QuizTitle:   quiz.Title,
		Score:       totalScore,
		TotalMarks:  quiz.TotalMarks,
		XPEarned:    xpEarned,
		Percentage:  percentage,
		Status:      attemptStatus(percentage),
		AttemptedAt: attempt.AttemptedAt.Format(time.RFC3339),
	}, nil
}

// GetStudentResults replays percentage/status from each attempt's stored
// snapshot, so quiz edits after the fact do not change history.
func (s *QuizService) GetStudentResults(userID uint, page, limit int) ([]QuizResultResponse, int64, error) {
	attempts, total, err := s.AttemptRepo.FindByUserOrdered(userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	results := make([]QuizResultResponse, len(attempts))
	for i, attempt := range attempts {
		percentage := 0.0
		if attempt.TotalMarks > 0 {
			percentage = float64(attempt.Score) / float64(attempt.TotalMarks) * 100
		}

		result := QuizResultResponse{
			AttemptID:   attempt.ID,
			Score:       attempt.Score,
			TotalMarks:  attempt.TotalMarks,
			Percentage:  percentage,
			Status:      attemptStatus(percentage),
			AttemptedAt: attempt.AttemptedAt.Format(time.RFC3339),
		}
		if attempt.Quiz != nil {
			result.QuizTitle = attempt.Quiz.Title
			result.XPEarned = int(float64(attempt.Quiz.XPReward) * percentage / 100)
		}
		results[i] = result
	}
	return results, total, nil
}

type LeaderboardEntry struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	XP        int    `json:"xp"`
}

type leaderboardPage struct {
	Entries []LeaderboardEntry `json:"entries"`
	Total   int64              `json:"total"`
}

// GetLeaderboard ranks students by XP, serving a short-lived redis cache
// when one is configured.
func (s *QuizService) GetLeaderboard(page, limit int) ([]LeaderboardEntry, int64, error) {
	key := fmt.Sprintf("%s%d:%d", leaderboardKeyPrefix, page, limit)

	if s.Redis != nil {
		if cached, err := s.Redis.Get(context.Background(), key).Result(); err == nil {
			var cp leaderboardPage
			if err := json.Unmarshal([]byte(cached), &cp); err == nil {
				return cp.Entries, cp.Total, nil
			}
		}
	}

	students, total, err := s.UserRepo.FindStudents(page, limit, "")
	if err != nil {
		return nil, 0, err
	}

	entries := make([]LeaderboardEntry, len(students))
	for i, u := range students {
		entries[i] = LeaderboardEntry{
			ID:        u.ID,
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			XP:        u.XP,
		}
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(leaderboardPage{Entries: entries, Total: total}); err == nil {
			s.Redis.Set(context.Background(), key, payload, leaderboardCacheTTL)
		}
	}

	return entries, total, nil
}

func (s *QuizService) invalidateLeaderboard() {
	if s.Redis == nil {
		return
	}

	ctx := context.Background()
	iter := s.Redis.Scan(ctx, 0, leaderboardKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		s.Redis.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Log.Warn("leaderboard cache invalidation failed", zap.Error(err))
	}
}

func attemptStatus(percentage float64) string {
	if percentage >= passingPercentage {
		return "PASSED"
	}
	return "FAILED"
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func toQuizResponse(quiz *model.Quiz) QuizResponse {
	res := QuizResponse{
		ID:          int64(quiz.ID),
		Title:       quiz.Title,
		Description: quiz.Description,
		XPReward:    quiz.XPReward,
		TotalMarks:  quiz.TotalMarks,
	}
	if !quiz.CreatedAt.IsZero() {
		res.CreatedAt = quiz.CreatedAt.Format(time.RFC3339)
	}
	for _, q := range quiz.Questions {
		question := QuestionResponse{
			ID:           int64(q.ID),
			QuestionText: q.QuestionText,
			Marks:        q.Marks,
		}
		for _, o := range q.Options {
			question.Options = append(question.Options, OptionResponse{
				ID:         int64(o.ID),
				OptionText: o.OptionText,
				IsCorrect:  o.IsCorrect,
			})
		}
		res.Questions = append(res.Questions, question)
	}
	return res
}

func toStudentQuizResponse(quiz *model.Quiz) StudentQuizResponse {
	res := StudentQuizResponse{
		ID:          int64(quiz.ID),
		Title:       quiz.Title,
		Description: quiz.Description,
		XPReward:    quiz.XPReward,
		TotalMarks:  quiz.TotalMarks,
	}
	if !quiz.CreatedAt.IsZero() {
		res.CreatedAt = quiz.CreatedAt.Format(time.RFC3339)
	}
	for _, q := range quiz.Questions {
		question := StudentQuestionResponse{
			ID:           int64(q.ID),
			QuestionText: q.QuestionText,
			Marks:        q.Marks,
		}
		for _, o := range q.Options {
			question.Options = append(question.Options, StudentOptionResponse{
				ID:         int64(o.ID),
				OptionText: o.OptionText,
			})
		}
		res.Questions = append(res.Questions, question)
	}
	return res
}
