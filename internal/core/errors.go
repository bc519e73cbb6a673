package core

import "errors"

// Predefined errors returned by tabula database operations.
var (
	// ErrNotFound is returned by FindOne when no row matches the query.
	ErrNotFound = errors.New("tabula: no matching record")
	// ErrMissingID is returned when an update or delete needs the record's
	// primary key and it is missing or null (any part, for compound keys).
	ErrMissingID = errors.New("tabula: primary key is missing or null")
	// ErrNoConnection is returned when no database is registered under the
	// requested connection name.
	ErrNoConnection = errors.New("tabula: no database registered for connection")
	// ErrUnknownOption is returned by Configure for an unrecognized option key.
	ErrUnknownOption = errors.New("tabula: unknown configuration option")
	// ErrOptionValue is returned by Configure when an option value has the
	// wrong type or an out-of-range value.
	ErrOptionValue = errors.New("tabula: invalid configuration option value")
	// ErrNoTable is returned when a statement is compiled without a table name.
	ErrNoTable = errors.New("tabula: no table selected")
)

// WrapError wraps an error with additional context message.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
