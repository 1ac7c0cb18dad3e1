package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyLoaded = errors.New("already loaded")
	ErrBadStatus     = errors.New("unexpected status")
	ErrBadPayload    = errors.New("malformed payload")
)
