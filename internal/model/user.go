package model

type UserRole string

const (
	Student UserRole = "STUDENT"
	Faculty UserRole = "FACULTY"
)

// swagger:model User
type User struct {
	BaseModel
	Username  string   `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email     string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string   `gorm:"size:100;not null" json:"-"`
	FirstName string   `gorm:"size:50" json:"firstName"`
	LastName  string   `gorm:"size:50" json:"lastName"`
	Phone     string   `gorm:"size:20" json:"phone"`
	Role      UserRole `gorm:"type:varchar(20);not null;default:'STUDENT'" json:"role"`
	// cumulative experience points, mutated only by quiz completion
	XP     int    `gorm:"default:0" json:"xp"`
	Avatar string `gorm:"size:255" json:"avatar"`
}

func (User) TableName() string {
	return "users"
}
