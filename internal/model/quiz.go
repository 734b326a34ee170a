package model

// swagger:model Quiz
type Quiz struct {
	BaseModel
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	XPReward    int    `gorm:"not null" json:"xpReward"`
	// sum of question marks, recomputed whenever questions are written
	TotalMarks  int        `gorm:"not null;default:0" json:"totalMarks"`
	CreatedByID uint       `gorm:"not null;index" json:"createdById"`
	CreatedBy   *User      `gorm:"foreignKey:CreatedByID" json:"-"`
	Questions   []Question `gorm:"foreignKey:QuizID" json:"questions"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// swagger:model Question
type Question struct {
	BaseModel
	QuestionText string   `gorm:"type:text;not null" json:"questionText"`
	Marks        int      `gorm:"not null;default:1" json:"marks"`
	QuizID       uint     `gorm:"not null;index" json:"-"`
	Options      []Option `gorm:"foreignKey:QuestionID" json:"options"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Option
type Option struct {
	BaseModel
	OptionText string `gorm:"type:text;not null" json:"optionText"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"isCorrect"`
	QuestionID uint   `gorm:"not null;index" json:"-"`
}

func (Option) TableName() string {
	return "options"
}
