package model

import "errors"

var (
	// ErrMonthlyLimit means the user already has the maximum number of
	// submissions for the current calendar month.
	ErrMonthlyLimit = errors.New("monthly submission limit reached")

	// ErrInvalidVideoURL means no video id could be extracted from the
	// submitted link.
	ErrInvalidVideoURL = errors.New("invalid video url")
)
