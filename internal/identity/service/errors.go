package service

import "errors"

// State-conflict and token errors surfaced to the dispatcher. These are
// never retried and never fatal to the consumer loop; anything else
// bubbling out of a service is an infrastructure error.
var (
	ErrDuplicateEmail   = errors.New("service: email already registered")
	ErrUserNotFound     = errors.New("service: user not found")
	ErrAlreadyConfirmed = errors.New("service: email already confirmed")
	ErrCodeMismatch     = errors.New("service: confirmation code mismatch")
	ErrCodeExpired      = errors.New("service: confirmation code expired")
	ErrEmailUnconfirmed = errors.New("service: email not confirmed")
	ErrWrongPassword    = errors.New("service: wrong password")
	ErrTokenExpired     = errors.New("service: refresh token expired")
	ErrTokenInvalid     = errors.New("service: refresh token invalid")
)
