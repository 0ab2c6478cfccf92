package service

import "github.com/pkg/errors"

// Request parsing errors. Each wraps the offending key or value.
var (
	ErrMissingKey   = errors.New("missing key")
	ErrTypeMismatch = errors.New("type mismatch")
	ErrInvalidValue = errors.New("invalid value")
)
