package model

// Remark is a faculty member's note on a student.
type Remark struct {
	BaseModel
	RemarkText string `gorm:"type:text;not null" json:"remarkText"`
	StudentID  uint   `gorm:"not null;index" json:"studentId"`
	Student    *User  `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	FacultyID  uint   `gorm:"not null;index" json:"facultyId"`
	Faculty    *User  `gorm:"foreignKey:FacultyID" json:"faculty,omitempty"`
}

func (Remark) TableName() string {
	return "remarks"
}
