package controller

import (
	"errors"
	"strconv"

	"edulearn_backend/internal/service"
	"edulearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	QuizService  *service.QuizService
	GenAIService *service.GenAIService
	UserService  *service.UserService
}

func NewStudentController(quizService *service.QuizService, genAIService *service.GenAIService, userService *service.UserService) *StudentController {
	return &StudentController{
		QuizService:  quizService,
		GenAIService: genAIService,
		UserService:  userService,
	}
}

func pageParams(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

// GetQuizzes godoc
// @Summary List available quizzes
// @Description Pages through quizzes without revealing correct answers
// @Tags student
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page number" default(1)
// @Param   limit query int false "Page size" default(10)
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/student/quizzes [get]
func (c *StudentController) GetQuizzes(ctx *gin.Context) {
	page, limit := pageParams(ctx)

	quizzes, total, err := c.QuizService.GetAllQuizzes(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: quizzes, Total: total, Page: page, Limit: limit})
}

// GetQuiz godoc
// @Summary Get a quiz to take
// @Description Returns one quiz with its questions, correct answers hidden
// @Tags student
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response{data=service.StudentQuizResponse} "Success"
// @Failure 404 {object} util.Response "Quiz not found"
// @Router /api/student/quizzes/{id} [get]
func (c *StudentController) GetQuiz(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	quiz, err := c.QuizService.GetQuizForStudent(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, quiz)
}

// SubmitAttempt godoc
// @Summary Submit a quiz attempt
// @Description Grades the answers, records the attempt and awards XP once
// @Tags student
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.AttemptRequest true "Selected answers"
// @Success 200 {object} util.Response{data=service.QuizResultResponse} "Graded result"
// @Failure 400 {object} util.Response "Invalid request"
// @Failure 404 {object} util.Response "Quiz, question or option not found"
// @Failure 409 {object} util.Response "Quiz already attempted"
// @Router /api/student/quiz-attempts [post]
func (c *StudentController) SubmitAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.SubmitAttempt(claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizAlreadyAttempted):
			util.Conflict(ctx, "quiz already attempted")
		case errors.Is(err, util.ErrQuizNotFound),
			errors.Is(err, util.ErrQuestionNotFound),
			errors.Is(err, util.ErrOptionNotFound),
			errors.Is(err, util.ErrUserNotFound):
			util.Error(ctx, 404, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// GetQuizResults godoc
// @Summary Past quiz results
// @Description Lists the student's attempts, newest first
// @Tags student
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page number" default(1)
// @Param   limit query int false "Page size" default(10)
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/student/quiz-results [get]
func (c *StudentController) GetQuizResults(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	page, limit := pageParams(ctx)

	results, total, err := c.QuizService.GetStudentResults(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: results, Total: total, Page: page, Limit: limit})
}

// GetLeaderboard godoc
// @Summary Student leaderboard
// @Description Ranks students by XP
// @Tags student
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page number" default(1)
// @Param   limit query int false "Page size" default(10)
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/student/leaderboard [get]
func (c *StudentController) GetLeaderboard(ctx *gin.Context) {
	page, limit := pageParams(ctx)

	entries, total, err := c.QuizService.GetLeaderboard(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: entries, Total: total, Page: page, Limit: limit})
}

// GenerateCustomQuiz godoc
// @Summary Generate an AI quiz
// @Description Builds an ephemeral quiz on the requested topic. Always
// @Description returns a quiz, degrading to canned questions when the AI
// @Description backend is unavailable.
// @Tags student
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CustomQuizRequest true "Topic and difficulty"
// @Success 200 {object} util.Response{data=service.QuizResponse} "Generated quiz"
// @Failure 400 {object} util.Response "Invalid request"
// @Router /api/student/custom-quiz [post]
func (c *StudentController) GenerateCustomQuiz(ctx *gin.Context) {
	var req CustomQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz := c.GenAIService.GenerateCustomQuiz(req.Topic, req.Difficulty)
	util.Success(ctx, quiz)
}

// CustomQuizRequest asks for an AI-generated quiz.
type CustomQuizRequest struct {
	Topic      string `json:"topic" binding:"required"`
	Difficulty string `json:"difficulty" binding:"required,oneof=EASY MEDIUM HARD easy medium hard"`
}

// CustomQuizResultRequest reports the outcome of an ephemeral quiz so the
// earned XP can be credited.
type CustomQuizResultRequest struct {
	Score    int `json:"score" binding:"min=0"`
	XPEarned int `json:"xpEarned" binding:"min=0"`
}

// CompleteCustomQuiz godoc
// @Summary Credit XP for a custom quiz
// @Description Adds the XP earned on an AI-generated quiz to the student
// @Tags student
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CustomQuizResultRequest true "Quiz outcome"
// @Success 200 {object} util.Response{data=model.User} "Updated profile"
// @Failure 400 {object} util.Response "Invalid request"
// @Router /api/student/custom-quiz-complete [post]
func (c *StudentController) CompleteCustomQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CustomQuizResultRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.AddCustomQuizXP(claims.UserID, req.XPEarned)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotAStudent):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, user)
}

// GetProfile godoc
// @Summary Student profile
// @Tags student
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Router /api/student/profile [get]
func (c *StudentController) GetProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.UserService.GetProfile(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// UpdateProfile godoc
// @Summary Update student profile
// @Tags student
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Failure 409 {object} util.Response "Email already registered"
// @Router /api/student/profile [put]
func (c *StudentController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateProfile(claims.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.Conflict(ctx, "email already registered")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// UploadAvatar godoc
// @Summary Upload a profile picture
// @Tags student
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   avatar formData file true "Image file"
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Router /api/student/profile/avatar [post]
func (c *StudentController) UploadAvatar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("avatar")
	if err != nil {
		util.BadRequest(ctx, "avatar file is required")
		return
	}

	user, err := c.UserService.UploadAvatar(ctx.Request.Context(), claims.UserID, file)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// GetRemarks godoc
// @Summary Remarks received
// @Description Lists faculty remarks about the student, newest first
// @Tags student
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page number" default(1)
// @Param   limit query int false "Page size" default(10)
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/student/remarks [get]
func (c *StudentController) GetRemarks(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	page, limit := pageParams(ctx)

	remarks, total, err := c.UserService.GetStudentRemarks(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: remarks, Total: total, Page: page, Limit: limit})
}
