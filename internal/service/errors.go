package service

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrNoteNotFound         = errors.New("note not found")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInternalServer       = errors.New("internal server error")
)
