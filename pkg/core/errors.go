package core

import "errors"

// Common errors.
var (
	ErrNotFound       = errors.New("record not found")
	ErrInvalidKey     = errors.New("invalid storage key")
	ErrEmptyCode      = errors.New("code cannot be derived from an empty name")
	ErrDuplicateCode  = errors.New("code already exists in collection")
	ErrTypeMismatch   = errors.New("slot already loaded with a different type")
	ErrUnknownAdapter = errors.New("unknown storage adapter")
)
