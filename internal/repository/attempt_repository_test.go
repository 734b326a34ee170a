package repository

import (
	"testing"

	"edulearn_backend/internal/model"
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

func seedUserAndQuiz(t *testing.T, db *gorm.DB) (*model.User, *model.Quiz) {
	t.Helper()

	user := &model.User{Username: "alice", Email: "alice@example.com", Password: "x", Role: model.Student}
	require.NoError(t, db.Create(user).Error)

	quiz := &model.Quiz{Title: "Quiz", XPReward: 100, TotalMarks: 1, CreatedByID: user.ID}
	require.NoError(t, db.Create(quiz).Error)
	return user, quiz
}

func TestUniqueIndexRejectsSecondAttempt(t *testing.T) {
	db := setupTestDB(t)
	user, quiz := seedUserAndQuiz(t, db)

	first := &model.QuizAttempt{UserID: user.ID, QuizID: quiz.ID, Score: 1, TotalMarks: 1}
	require.NoError(t, db.Create(first).Error)

	second := &model.QuizAttempt{UserID: user.ID, QuizID: quiz.ID, Score: 0, TotalMarks: 1}
	err := db.Create(second).Error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")
}

func TestUniqueIndexAllowsDifferentQuiz(t *testing.T) {
	db := setupTestDB(t)
	user, quiz := seedUserAndQuiz(t, db)

	other := &model.Quiz{Title: "Other", XPReward: 50, TotalMarks: 1, CreatedByID: user.ID}
	require.NoError(t, db.Create(other).Error)

	require.NoError(t, db.Create(&model.QuizAttempt{UserID: user.ID, QuizID: quiz.ID, TotalMarks: 1}).Error)
	require.NoError(t, db.Create(&model.QuizAttempt{UserID: user.ID, QuizID: other.ID, TotalMarks: 1}).Error)
}

func TestExistsByUserAndQuiz(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	user, quiz := seedUserAndQuiz(t, db)

	exists, err := repo.ExistsByUserAndQuiz(user.ID, quiz.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, db.Create(&model.QuizAttempt{UserID: user.ID, QuizID: quiz.ID, TotalMarks: 1}).Error)

	exists, err = repo.ExistsByUserAndQuiz(user.ID, quiz.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFindByUserOrderedPreloadsQuiz(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	user, quiz := seedUserAndQuiz(t, db)

	require.NoError(t, db.Create(&model.QuizAttempt{UserID: user.ID, QuizID: quiz.ID, Score: 1, TotalMarks: 1}).Error)

	attempts, total, err := repo.FindByUserOrdered(user.ID, 1, 10)
	require.NoError(t, err)

	assert.EqualValues(t, 1, total)
	require.Len(t, attempts, 1)
	require.NotNil(t, attempts[0].Quiz)
	assert.Equal(t, "Quiz", attempts[0].Quiz.Title)
}
