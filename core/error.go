// Package core holds the error model shared by every stage of the pipeline.
package core

import "fmt"

// ErrorKind partitions errors by origin, not severity.
type ErrorKind string

const (
	ErrorKindAPI            ErrorKind = "ApiError"
	ErrorKindLogic          ErrorKind = "LogicError"
	ErrorKindStorage        ErrorKind = "StorageError"
	ErrorKindRequest        ErrorKind = "RequestError"
	ErrorKindInitialization ErrorKind = "InitializationError"
	ErrorKindInternal       ErrorKind = "InternalError"
	ErrorKindUnknown        ErrorKind = "Unknown"
)

// Error is the wire-serializable error carried through the pipeline and,
// where applicable, returned to the AMQP caller.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// New builds an Error with message used verbatim; use Newf for a formatted
// message.
func New(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error with a formatted message.
func Newf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Message
}
