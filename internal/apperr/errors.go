package apperr

import "errors"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidArgs    = errors.New("invalid args")
	ErrOutsideRoot    = errors.New("path is outside the allowed root")
)
