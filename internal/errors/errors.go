// Package errors defines the error taxonomy shared by the CLI and the HTTP
// API. Data-quality problems never reach this package: malformed directory
// lines and output-name collisions are recovered where they happen.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrInputNotFound     = errors.New("input not found")
	ErrMissingColumn     = errors.New("required column missing")
	ErrEmptySheet        = errors.New("spreadsheet is empty")
	ErrFilePermission    = errors.New("file permission denied")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// MissingColumnError reports a required spreadsheet column together with the
// columns that were actually present, so the user can spot a typo.
type MissingColumnError struct {
	Column    string
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("'%s' column not found. Available columns: [%s]", e.Column, strings.Join(e.Available, ", "))
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInputNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingColumn), errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrEmptySheet), errors.Is(err, ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, ErrFilePermission):
		return http.StatusLocked
	default:
		return http.StatusInternalServerError
	}
}
