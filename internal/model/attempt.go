package model

import "time"

// QuizAttempt is a student's single, immutable scoring record for one quiz.
// The composite unique index makes a second submission for the same
// (user, quiz) pair fail at the storage layer even under concurrency.
type QuizAttempt struct {
	BaseModel
	UserID uint  `gorm:"not null;uniqueIndex:idx_attempt_user_quiz" json:"userId"`
	User   *User `gorm:"foreignKey:UserID" json:"-"`
	QuizID uint  `gorm:"not null;uniqueIndex:idx_attempt_user_quiz" json:"quizId"`
	Quiz   *Quiz `gorm:"foreignKey:QuizID" json:"-"`
	Score  int   `gorm:"not null;default:0" json:"score"`
	// totalMarks is copied from the quiz at attempt time so later quiz
	// edits never change historical results
	TotalMarks  int       `gorm:"not null" json:"totalMarks"`
	AttemptedAt time.Time `gorm:"autoCreateTime" json:"attemptedAt"`
	Answers     []Answer  `gorm:"foreignKey:QuizAttemptID" json:"answers"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

type Answer struct {
	BaseModel
	QuizAttemptID    uint  `gorm:"not null;index" json:"-"`
	QuestionID       uint  `gorm:"not null" json:"questionId"`
	SelectedOptionID *uint `json:"selectedOptionId"`
	IsCorrect        bool  `gorm:"not null;default:false" json:"isCorrect"`
	MarksObtained    int   `gorm:"not null;default:0" json:"marksObtained"`
}

func (Answer) TableName() string {
	return "answers"
}
