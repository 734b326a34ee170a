package controller

import (
	"errors"
	"strconv"

	"edulearn_backend/internal/service"
	"edulearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FacultyController struct {
	QuizService *service.QuizService
	UserService *service.UserService
}

func NewFacultyController(quizService *service.QuizService, userService *service.UserService) *FacultyController {
	return &FacultyController{
		QuizService: quizService,
		UserService: userService,
	}
}

// CreateQuiz godoc
// @Summary Create a quiz
// @Description Persists a quiz with its questions and options. Each
// @Description question is worth one mark.
// @Tags faculty
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.QuizRequest true "Quiz definition"
// @Success 201 {object} util.Response{data=model.Quiz} "Created"
// @Failure 400 {object} util.Response "Invalid request"
// @Router /api/faculty/quizzes [post]
func (c *FacultyController) CreateQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.CreateQuiz(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, quiz)
}

// GetQuizzes godoc
// @Summary List own quizzes
// @Description Pages through quizzes created by the authenticated faculty
// @Tags faculty
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page number" default(1)
// @Param   limit query int false "Page size" default(10)
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/faculty/quizzes [get]
func (c *FacultyController) GetQuizzes(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	page, limit := pageParams(ctx)

	quizzes, total, err := c.QuizService.GetFacultyQuizzes(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: quizzes, Total: total, Page: page, Limit: limit})
}

// DeleteQuiz godoc
// @Summary Delete a quiz
// @Description Removes a quiz and its questions. Only the creator may
// @Description delete it.
// @Tags faculty
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response "Deleted"
// @Failure 403 {object} util.Response "Not the creator"
// @Failure 404 {object} util.Response "Quiz not found"
// @Router /api/faculty/quizzes/{id} [delete]
func (c *FacultyController) DeleteQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	if err := c.QuizService.DeleteQuiz(uint(id), claims.UserID); err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}

// GetStudents godoc
// @Summary List students
// @Description Pages through students ordered by XP, optionally filtered
// @Description by a search term
// @Tags faculty
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page number" default(1)
// @Param   limit query int false "Page size" default(10)
// @Param   search query string false "Match against username, email or name"
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/faculty/students [get]
func (c *FacultyController) GetStudents(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	search := ctx.Query("search")

	students, total, err := c.UserService.GetStudents(page, limit, search)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: students, Total: total, Page: page, Limit: limit})
}

// AddRemark godoc
// @Summary Add a remark
// @Description Records feedback for a student
// @Tags faculty
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.RemarkRequest true "Remark"
// @Success 201 {object} util.Response{data=service.RemarkResponse} "Created"
// @Failure 400 {object} util.Response "Target is not a student"
// @Failure 404 {object} util.Response "Student not found"
// @Router /api/faculty/remarks [post]
func (c *FacultyController) AddRemark(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.RemarkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	remark, err := c.UserService.AddRemark(claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotAStudent):
			util.BadRequest(ctx, "target user is not a student")
		case errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, remark)
}

// GetRemarks godoc
// @Summary Remarks written
// @Description Lists remarks authored by the faculty member, newest first
// @Tags faculty
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page number" default(1)
// @Param   limit query int false "Page size" default(10)
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/faculty/remarks [get]
func (c *FacultyController) GetRemarks(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	page, limit := pageParams(ctx)

	remarks, total, err := c.UserService.GetFacultyRemarks(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: remarks, Total: total, Page: page, Limit: limit})
}

// GetProfile godoc
// @Summary Faculty profile
// @Tags faculty
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Router /api/faculty/profile [get]
func (c *FacultyController) GetProfile(ctx *gin.Context) {
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
// @Summary Update faculty profile
// @Tags faculty
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Router /api/faculty/profile [put]
func (c *FacultyController) UpdateProfile(ctx *gin.Context) {
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
// @Tags faculty
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   avatar formData file true "Image file"
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Router /api/faculty/profile/avatar [post]
func (c *FacultyController) UploadAvatar(ctx *gin.Context) {
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
