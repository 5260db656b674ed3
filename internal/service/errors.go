package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
	ErrCodeExhausted      = errors.New("could not generate a unique competition code")
	ErrInvalidFixture     = errors.New("invalid fixture")
)
