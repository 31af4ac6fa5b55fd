package repository

import "errors"

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrFailedValidation = errors.New("failed validation")
	ErrUnavailable      = errors.New("database unavailable")
)
