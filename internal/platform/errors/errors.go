package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidTime  = errors.New("invalid time")
	ErrInvalidRange = errors.New("invalid range")
	ErrPersistence  = errors.New("persistence warning")

	ErrNoActiveSession     = fmt.Errorf("%w: no active session", ErrInvalidState)
	ErrActiveSessionExists = fmt.Errorf("%w: active session already exists", ErrInvalidState)
)
