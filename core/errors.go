package core

import "github.com/pkg/errors"

// FieldError ties a validation failure to the JSON field that caused it, so
// the HTTP layer can render the message next to the offending input.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a user-correctable request failure: a bad login, a
// duplicate email, a malformed exam. Err carries the overall message;
// Fields, when set, the per-field breakdown.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// FieldMap flattens the per-field errors for JSON rendering. Nil when the
// error carries no field detail.
func (err ValidationError) FieldMap() map[string]string {
	if len(err.Fields) == 0 {
		return nil
	}
	m := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		m[f.Field] = f.Error
	}
	return m
}

// shutdown marks an error no handler can recover from, e.g. a store that
// stopped accepting writes mid-flight.
type shutdown struct {
	message string
}

// NewShutdownError returns an error that makes the HTTP error handler signal
// a graceful stop.
func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s *shutdown) Error() string { return s.message }

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
