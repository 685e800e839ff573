package settings

import (
	"errors"
)

var (
	// ErrUnknownKey is returned when a key is not part of the settings schema.
	ErrUnknownKey = errors.New("unknown settings key")
	// ErrInvalidValue is returned when a value can not be coerced to the key's declared type.
	ErrInvalidValue = errors.New("invalid settings value")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)
