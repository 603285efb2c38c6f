package service

import "errors"

// Service layer errors mapped to HTTP statuses by the handlers.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrPromptNotFound  = errors.New("prompt not found")
	ErrRunNotFound     = errors.New("run not found")

	// ErrForbidden marks non-owner access to a project's resources.
	ErrForbidden = errors.New("not authorized")

	ErrEmailTaken       = errors.New("email already registered")
	ErrProjectNameTaken = errors.New("project name already exists")

	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrGenerationFailed hides the provider error from the caller; the
	// underlying cause goes to the error reporter only.
	ErrGenerationFailed = errors.New("failed to run prompt via generation API")
)
