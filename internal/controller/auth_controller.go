package controller

import (
	"errors"

	"edulearn_backend/internal/service"
	"edulearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// Signup godoc
// @Summary Register a new account
// @Description Creates a user with the given credentials and returns a JWT
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body body service.SignupRequest true "Registration details"
// @Success 201 {object} util.Response{data=service.AuthResponse} "Created"
// @Failure 400 {object} util.Response "Invalid request"
// @Failure 409 {object} util.Response "Username or email taken"
// @Router /api/auth/signup [post]
func (c *AuthController) Signup(ctx *gin.Context) {
	var req service.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.AuthService.Register(req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrUsernameRegistered):
			util.Conflict(ctx, "username already taken")
		case errors.Is(err, util.ErrEmailRegistered):
			util.Conflict(ctx, "email already registered")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, res)
}

// Signin godoc
// @Summary Sign in
// @Description Verifies credentials and returns a JWT
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body body service.SigninRequest true "Credentials"
// @Success 200 {object} util.Response{data=service.AuthResponse} "Success"
// @Failure 400 {object} util.Response "Invalid request"
// @Failure 401 {object} util.Response "Bad credentials"
// @Router /api/auth/signin [post]
func (c *AuthController) Signin(ctx *gin.Context) {
	var req service.SigninRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.AuthService.Login(req)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.Unauthorized(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, res)
}

// Me godoc
// @Summary Current user
// @Description Returns the profile of the authenticated user
// @Tags auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.AuthService.GetCurrentUser(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, user)
}
