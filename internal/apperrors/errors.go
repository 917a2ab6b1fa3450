package apperrors

import "fmt"

// Kind classifies an error for HTTP status mapping.
type Kind int

const (
	KindValidation Kind = iota
	KindConflict
	KindAuth
	KindNotFound
	KindConfig
	KindUpstream
	KindStorage
	KindInternal
)

// Error carries a classification, a caller-facing message and an
// optional underlying cause. The cause is surfaced in the response's
// error field; the message alone goes to logs and clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or incomplete caller input.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// Conflict reports a uniqueness violation.
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

// Auth reports bad credentials.
func Auth(msg string) *Error { return &Error{Kind: KindAuth, Message: msg} }

// NotFound reports an absent referenced entity.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// Config reports missing required external configuration.
func Config(msg string) *Error { return &Error{Kind: KindConfig, Message: msg} }

// Upstream reports a third-party provider failure.
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// Storage reports an unexpected database failure.
func Storage(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// Internal reports any other unexpected failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}
