package app

import (
	"edulearn_backend/docs"
	"edulearn_backend/internal/config"
	"edulearn_backend/internal/middleware"
	"edulearn_backend/internal/model"
	"edulearn_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.Check)
		public.POST("/auth/signup", c.auth.Signup)
		public.POST("/auth/signin", c.auth.Signin)
	}

	authed := router.Group("/api")
	authed.Use(middleware.AuthMiddleware(cfg))
	{
		authed.GET("/auth/me", c.auth.Me)

		student := authed.Group("/student")
		student.Use(middleware.RoleMiddleware(model.Student))
		{
			student.GET("/quizzes", c.student.GetQuizzes)
			student.GET("/quizzes/:id", c.student.GetQuiz)
			student.POST("/quiz-attempts", c.student.SubmitAttempt)
			student.GET("/quiz-results", c.student.GetQuizResults)
			student.GET("/leaderboard", c.student.GetLeaderboard)
			student.POST("/custom-quiz", c.student.GenerateCustomQuiz)
			student.POST("/custom-quiz-complete", c.student.CompleteCustomQuiz)
			student.GET("/profile", c.student.GetProfile)
			student.PUT("/profile", c.student.UpdateProfile)
			student.POST("/profile/avatar", c.student.UploadAvatar)
			student.GET("/remarks", c.student.GetRemarks)
		}

		faculty := authed.Group("/faculty")
		faculty.Use(middleware.RoleMiddleware(model.Faculty))
		{
			faculty.POST("/quizzes", c.faculty.CreateQuiz)
			faculty.GET("/quizzes", c.faculty.GetQuizzes)
			faculty.DELETE("/quizzes/:id", c.faculty.DeleteQuiz)
			faculty.GET("/students", c.faculty.GetStudents)
			faculty.POST("/remarks", c.faculty.AddRemark)
			faculty.GET("/remarks", c.faculty.GetRemarks)
			faculty.GET("/profile", c.faculty.GetProfile)
			faculty.PUT("/profile", c.faculty.UpdateProfile)
			faculty.POST("/profile/avatar", c.faculty.UploadAvatar)
		}
	}
}
