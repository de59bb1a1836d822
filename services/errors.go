package services

import "errors"

// Failure taxonomy shared by the pipeline components. Components wrap these with
// fmt.Errorf("%w: ...") so callers can match with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrProvider     = errors.New("provider error")
	ErrNoResults    = errors.New("no results")
	ErrDownload     = errors.New("download error")
	ErrConversion   = errors.New("conversion error")
	ErrTag          = errors.New("tag error")
	ErrInvalidInput = errors.New("invalid input")
)
