package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failure")
	ErrValidation  = errors.New("validation failed")
)
