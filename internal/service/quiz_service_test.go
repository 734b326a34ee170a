package service

import (
	"fmt"
	"testing"

	"edulearn_backend/internal/model"
	"edulearn_backend/internal/repository"
	"edulearn_backend/internal/util"
	"edulearn_backend/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestQuizService(db *gorm.DB) *QuizService {
	return NewQuizService(
		repository.NewQuizRepository(db),
		repository.NewAttemptRepository(db),
		repository.NewUserRepository(db),
		db,
		nil,
	)
}

func createTestUser(t *testing.T, db *gorm.DB, username string, role model.UserRole) *model.User {
	t.Helper()

	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createTestQuiz builds a quiz where the first option of every question is
// the correct one.
func createTestQuiz(t *testing.T, db *gorm.DB, creatorID uint, numQuestions, xpReward int) *model.Quiz {
	t.Helper()

	quiz := &model.Quiz{
		Title:       "Test Quiz",
		XPReward:    xpReward,
		TotalMarks:  numQuestions,
		CreatedByID: creatorID,
	}
	for i := 0; i < numQuestions; i++ {
		quiz.Questions = append(quiz.Questions, model.Question{
			QuestionText: fmt.Sprintf("Question %d", i+1),
			Marks:        1,
			Options: []model.Option{
				{OptionText: "Right", IsCorrect: true},
				{OptionText: "Wrong 1"},
				{OptionText: "Wrong 2"},
				{OptionText: "Wrong 3"},
			},
		})
	}
	require.NoError(t, db.Create(quiz).Error)
	return quiz
}

// answer picks option number optIdx (0-based) of question qIdx.
func answerFor(quiz *model.Quiz, qIdx, optIdx int) AnswerRequest {
	optID := quiz.Questions[qIdx].Options[optIdx].ID
	return AnswerRequest{
		QuestionID:       quiz.Questions[qIdx].ID,
		SelectedOptionID: &optID,
	}
}

func TestSubmitAttemptScoresAndAwardsXP(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuizService(db)
	faculty := createTestUser(t, db, "prof", model.Faculty)
	student := createTestUser(t, db, "alice", model.Student)
	quiz := createTestQuiz(t, db, faculty.ID, 3, 100)

	result, err := svc.SubmitAttempt(student.ID, AttemptRequest{
		QuizID: quiz.ID,
		Answers: []AnswerRequest{
			answerFor(quiz, 0, 0),
			answerFor(quiz, 1, 1),
			answerFor(quiz, 2, 2),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 3, result.TotalMarks)
	assert.InDelta(t, 33.33, result.Percentage, 0.01)
	// one of three at 100 XP rounds down to 33
	assert.Equal(t, 33, result.XPEarned)
	assert.Equal(t, "FAILED", result.Status)

	var fresh model.User
	require.NoError(t, db.First(&fresh, student.ID).Error)
	assert.Equal(t, 33, fresh.XP)
}

func TestSubmitAttemptPassesAtSixtyPercent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuizService(db)
	faculty := createTestUser(t, db, "prof", model.Faculty)
	student := createTestUser(t, db, "alice", model.Student)
	quiz := createTestQuiz(t, db, faculty.ID, 5, 100)

	result, err := svc.SubmitAttempt(student.ID, AttemptRequest{
		QuizID: quiz.ID,
		Answers: []AnswerRequest{
			answerFor(quiz, 0, 0),
			answerFor(quiz, 1, 0),
			answerFor(quiz, 2, 0),
			answerFor(quiz, 3, 1),
			answerFor(quiz, 4, 1),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Score)
	assert.Equal(t, "PASSED", result.Status)
	assert.Equal(t, 60, result.XPEarned)
}

func TestSubmitAttemptRejectsSecondAttempt(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuizService(db)
	faculty := createTestUser(t, db, "prof", model.Faculty)
	student := createTestUser(t, db, "alice", model.Student)
	quiz := createTestQuiz(t, db, faculty.ID, 2, 100)

	first := AttemptRequest{
		QuizID:  quiz.ID,
		Answers: []AnswerRequest{answerFor(quiz, 0, 0), answerFor(quiz, 1, 0)},
	}
	_, err := svc.SubmitAttempt(student.ID, first)
	require.NoError(t, err)

	_, err = svc.SubmitAttempt(student.ID, first)
	assert.ErrorIs(t, err, util.ErrQuizAlreadyAttempted)

	// the first attempt's XP award must stand untouched
	var fresh model.User
	require.NoError(t, db.First(&fresh, student.ID).Error)
	assert.Equal(t, 100, fresh.XP)

	var attempts int64
	require.NoError(t, db.Model(&model.QuizAttempt{}).Count(&attempts).Error)
	assert.EqualValues(t, 1, attempts)
}

func TestSubmitAttemptRejectsForeignQuestion(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuizService(db)
	faculty := createTestUser(t, db, "prof", model.Faculty)
	student := createTestUser(t, db, "alice", model.Student)
	quiz := createTestQuiz(t, db, faculty.ID, 2, 100)
	other := createTestQuiz(t, db, faculty.ID, 1, 50)

	_, err := svc.SubmitAttempt(student.ID, AttemptRequest{
		QuizID: quiz.ID,
		Answers: []AnswerRequest{
			answerFor(quiz, 0, 0),
			answerFor(other, 0, 0),
		},
	})
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)

	// nothing may be written when validation fails
	var attempts, answers int64
	require.NoError(t, db.Model(&model.QuizAttempt{}).Count(&attempts).Error)
	require.NoError(t, db.Model(&model.Answer{}).Count(&answers).Error)
	assert.Zero(t, attempts)
	assert.Zero(t, answers)

	var fresh model.User
	require.NoError(t, db.First(&fresh, student.ID).Error)
	assert.Zero(t, fresh.XP)
}

func TestSubmitAttemptRejectsForeignOption(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuizService(db)
	faculty := createTestUser(t, db, "prof", model.Faculty)
	student := createTestUser(t, db, "alice", model.Student)
	quiz := createTestQuiz(t, db, faculty.ID, 2, 100)

	// option belongs to question 2, submitted against question 1
	wrongOpt := quiz.Questions[1].Options[0].ID
	_, err := svc.SubmitAttempt(student.ID, AttemptRequest{
		QuizID: quiz.ID,
		Answers: []AnswerRequest{
			{QuestionID: quiz.Questions[0].ID, SelectedOptionID: &wrongOpt},
		},
	})
	assert.ErrorIs(t, err, util.ErrOptionNotFound)
}

func TestSubmitAttemptUnansweredQuestionsScoreZero(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuizService(db)
	faculty := createTestUser(t, db, "prof", model.Faculty)
	student := createTestUser(t, db, "alice", model.Student)
	quiz := createTestQuiz(t, db, faculty.ID, 3, 100)

	result, err := svc.SubmitAttempt(student.ID, AttemptRequest{
		QuizID: quiz.ID,
		Answers: []AnswerRequest{
			answerFor(quiz, 0, 0),
			{QuestionID: quiz.Questions[1].ID},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 3, result.TotalMarks)

	var answers int64
	require.NoError(t, db.Model(&model.Answer{}).Count(&answers).Error)
	assert.EqualValues(t, 2, answers)
}

func TestSubmitAttemptEmptyQuizGivesZeroPercent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuizService(db)
	faculty := createTestUser(t, db, "prof", model.Faculty)
	student := createTestUser(t, db, "alice", model.Student)
	quiz := createTestQuiz(t, db, faculty.ID, 0, 100)

	result, err := svc.SubmitAttempt(student.ID, AttemptRequest{QuizID: quiz.ID})
	require.NoError(t, err)

	assert.Zero(t, result.Score)
	assert.Zero(t, result.Percentage)
	assert.Zero(t, result.XPEarned)
	assert.Equal(t, "FAILED", result.Status)
}

func TestSubmitAttemptUnknownQuiz(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuizService(db)
	student := createTestUser(t, db, "alice", model.Student)

	_, err := svc.SubmitAttempt(student.ID, AttemptRequest{QuizID: 9999})
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestCreateQuizComputesTotalMarks(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuizService(db)
	faculty := createTestUser(t, db, "prof", model.Faculty)

	yes := true
	quiz, err := svc.CreateQuiz(faculty.ID, QuizRequest{
		Title: "Basics",
		Questions: []QuestionRequest{
			{QuestionText: "Q1", Options: []OptionRequest{{OptionText: "A", IsCorrect: &yes}, {OptionText: "B"}}},
			{QuestionText: "Q2", Options: []OptionRequest{{OptionText: "A"}, {OptionText: "B", IsCorrect: &yes}}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, quiz.TotalMarks)
	assert.Equal(t, 100, quiz.XPReward)
	for _, q := range quiz.Questions {
		assert.Equal(t, 1, q.Marks)
	}
}

func TestGetQuizForStudentHidesNothingButAnswers(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuizService(db)
	faculty := createTestUser(t, db, "prof", model.Faculty)
	quiz := createTestQuiz(t, db, faculty.ID, 2, 100)

	view, err := svc.GetQuizForStudent(quiz.ID)
	require.NoError(t, err)

	assert.Len(t, view.Questions, 2)
	for _, q := range view.Questions {
		assert.Len(t, q.Options, 4)
	}
}

func TestDeleteQuizRequiresCreator(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuizService(db)
	owner := createTestUser(t, db, "owner", model.Faculty)
	intruder := createTestUser(t, db, "intruder", model.Faculty)
	quiz := createTestQuiz(t, db, owner.ID, 1, 100)

	err := svc.DeleteQuiz(quiz.ID, intruder.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	require.NoError(t, svc.DeleteQuiz(quiz.ID, owner.ID))

	_, err = svc.GetQuizForStudent(quiz.ID)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestGetStudentResultsReplaysStoredSnapshot(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuizService(db)
	faculty := createTestUser(t, db, "prof", model.Faculty)
	student := createTestUser(t, db, "alice", model.Student)
	quiz := createTestQuiz(t, db, faculty.ID, 2, 100)

	_, err := svc.SubmitAttempt(student.ID, AttemptRequest{
		QuizID:  quiz.ID,
		Answers: []AnswerRequest{answerFor(quiz, 0, 0), answerFor(quiz, 1, 1)},
	})
	require.NoError(t, err)

	results, total, err := svc.GetStudentResults(student.ID, 1, 10)
	require.NoError(t, err)

	assert.EqualValues(t, 1, total)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Score)
	assert.Equal(t, 2, results[0].TotalMarks)
	assert.Equal(t, "FAILED", results[0].Status)
	assert.Equal(t, "Test Quiz", results[0].QuizTitle)
}

func TestGetLeaderboardOrdersByXP(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuizService(db)

	low := createTestUser(t, db, "low", model.Student)
	high := createTestUser(t, db, "high", model.Student)
	createTestUser(t, db, "prof", model.Faculty)

	require.NoError(t, db.Model(low).Update("xp", 10).Error)
	require.NoError(t, db.Model(high).Update("xp", 500).Error)

	entries, total, err := svc.GetLeaderboard(1, 10)
	require.NoError(t, err)

	assert.EqualValues(t, 2, total)
	require.Len(t, entries, 2)
	assert.Equal(t, "high", entries[0].Username)
	assert.Equal(t, "low", entries[1].Username)
}
