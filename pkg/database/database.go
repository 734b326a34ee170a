package database

import (
	"edulearn_backend/internal/config"
	"edulearn_backend/internal/model"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
		cfg.Database.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release deployments migrate only when asked to
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}

		log.Println("Database migration completed")

		if err := Seed(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Quiz{},
		&model.Question{},
		&model.Option{},
		&model.QuizAttempt{},
		&model.Answer{},
		&model.Remark{},
	)
}

// Seed creates a default faculty and student account plus one sample quiz
// on an empty database so the app is usable right after first start.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	faculty := &model.User{
		Username:  "faculty",
		Email:     "faculty@edulearn.com",
		Password:  string(hash),
		FirstName: "Default",
		LastName:  "Faculty",
		Role:      model.Faculty,
	}
	if err := db.Create(faculty).Error; err != nil {
		return err
	}

	student := &model.User{
		Username:  "student",
		Email:     "student@edulearn.com",
		Password:  string(hash),
		FirstName: "Default",
		LastName:  "Student",
		Role:      model.Student,
	}
	if err := db.Create(student).Error; err != nil {
		return err
	}

	sample := &model.Quiz{
		Title:       "Getting Started with Programming",
		Description: "A short warm-up quiz covering programming basics.",
		XPReward:    100,
		TotalMarks:  3,
		CreatedByID: faculty.ID,
		Questions: []model.Question{
			{
				QuestionText: "What does a variable store?",
				Marks:        1,
				Options: []model.Option{
					{OptionText: "A value", IsCorrect: true},
					{OptionText: "A keyboard"},
					{OptionText: "A monitor"},
					{OptionText: "A compiler"},
				},
			},
			{
				QuestionText: "Which of these is a loop construct?",
				Marks:        1,
				Options: []model.Option{
					{OptionText: "if"},
					{OptionText: "for", IsCorrect: true},
					{OptionText: "switch"},
					{OptionText: "return"},
				},
			},
			{
				QuestionText: "What is the result of 2 + 2 in most languages?",
				Marks:        1,
				Options: []model.Option{
					{OptionText: "22"},
					{OptionText: "2"},
					{OptionText: "4", IsCorrect: true},
					{OptionText: "undefined"},
				},
			},
		},
	}
	if err := db.Create(sample).Error; err != nil {
		return err
	}

	log.Println("Seeded default users and sample quiz")
	return nil
}
