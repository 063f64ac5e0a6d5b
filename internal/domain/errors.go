package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidInput        = errors.New("invalid input")
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrProviderFailure     = errors.New("provider failure")
)
