package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrClosed        = errors.New("closed")
	ErrInvalidMode   = errors.New("invalid view mode")
)
