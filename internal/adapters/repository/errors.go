package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("submission not found")
	ErrDuplicateVideo = errors.New("video already submitted")
	ErrInvalidStatus  = errors.New("invalid submission status")
)
