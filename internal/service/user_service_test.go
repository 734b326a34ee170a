package service

import (
	"testing"

	"edulearn_backend/internal/model"
	"edulearn_backend/internal/repository"
	"edulearn_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestUserService(db *gorm.DB) *UserService {
	return NewUserService(
		repository.NewUserRepository(db),
		repository.NewRemarkRepository(db),
		db,
		nil,
	)
}

func TestAddCustomQuizXPAccumulates(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestUserService(db)
	student := createTestUser(t, db, "alice", model.Student)

	user, err := svc.AddCustomQuizXP(student.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, user.XP)

	user, err = svc.AddCustomQuizXP(student.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, 50, user.XP)

	var fresh model.User
	require.NoError(t, db.First(&fresh, student.ID).Error)
	assert.Equal(t, 50, fresh.XP)
}

func TestAddCustomQuizXPRejectsFaculty(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestUserService(db)
	faculty := createTestUser(t, db, "prof", model.Faculty)

	_, err := svc.AddCustomQuizXP(faculty.ID, 30)
	assert.ErrorIs(t, err, util.ErrNotAStudent)

	var fresh model.User
	require.NoError(t, db.First(&fresh, faculty.ID).Error)
	assert.Zero(t, fresh.XP)
}

func TestAddCustomQuizXPUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestUserService(db)

	_, err := svc.AddCustomQuizXP(9999, 30)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestUpdateProfileRejectsTakenEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestUserService(db)
	createTestUser(t, db, "bob", model.Student)
	alice := createTestUser(t, db, "alice", model.Student)

	_, err := svc.UpdateProfile(alice.ID, UpdateProfileRequest{Email: "bob@example.com"})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

func TestUpdateProfileChangesFields(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestUserService(db)
	alice := createTestUser(t, db, "alice", model.Student)

	user, err := svc.UpdateProfile(alice.ID, UpdateProfileRequest{
		FirstName: "Alice",
		LastName:  "Smith",
		Phone:     "555-0101",
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice", user.FirstName)
	assert.Equal(t, "Smith", user.LastName)
	assert.Equal(t, "555-0101", user.Phone)
	// email untouched when omitted
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestAddRemarkTargetMustBeStudent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestUserService(db)
	faculty := createTestUser(t, db, "prof", model.Faculty)
	colleague := createTestUser(t, db, "dean", model.Faculty)

	_, err := svc.AddRemark(faculty.ID, RemarkRequest{
		StudentID:  colleague.ID,
		RemarkText: "nice lecture",
	})
	assert.ErrorIs(t, err, util.ErrNotAStudent)
}

func TestAddRemarkAndListings(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestUserService(db)
	faculty := createTestUser(t, db, "prof", model.Faculty)
	student := createTestUser(t, db, "alice", model.Student)

	remark, err := svc.AddRemark(faculty.ID, RemarkRequest{
		StudentID:  student.ID,
		RemarkText: "great progress",
	})
	require.NoError(t, err)
	assert.Equal(t, "great progress", remark.RemarkText)

	received, total, err := svc.GetStudentRemarks(student.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, received, 1)
	assert.Equal(t, "great progress", received[0].RemarkText)

	written, total, err := svc.GetFacultyRemarks(faculty.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, written, 1)
}

func TestGetStudentsFiltersByRoleAndSearch(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestUserService(db)
	createTestUser(t, db, "alice", model.Student)
	createTestUser(t, db, "bob", model.Student)
	createTestUser(t, db, "prof", model.Faculty)

	students, total, err := svc.GetStudents(1, 10, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, students, 2)

	students, total, err = svc.GetStudents(1, 10, "ali")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, students, 1)
	assert.Equal(t, "alice", students[0].Username)
}
