package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrUsernameRegistered   = errors.New("username already taken")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrOptionNotFound       = errors.New("option not found")
	ErrQuizAlreadyAttempted = errors.New("quiz already attempted")
	ErrNotAStudent          = errors.New("only students can perform this action")

	// internal to the generation pipeline, absorbed by its fallbacks
	ErrInvalidGenerationFormat = errors.New("invalid response format: questions array not found")
	ErrNoQuestionsProduced     = errors.New("no valid questions found in AI response")
)
