// Package logger provides logging functionality for the application.
package logger

import "errors"

// Common errors returned by the logger package.
var (
	// ErrNilConfig is returned when a nil configuration is provided.
	ErrNilConfig = errors.New("logger config is nil")
	// ErrInvalidLevel is returned when an invalid logging level is provided.
	ErrInvalidLevel = errors.New("invalid logging level")
	// ErrInvalidEncoding is returned when an invalid log encoding format is provided.
	ErrInvalidEncoding = errors.New("invalid log encoding format")
	// ErrInvalidFields is returned when invalid fields are provided to a logging method.
	ErrInvalidFields = errors.New("invalid fields: must be key-value pairs")
)
