package exectx

import (
	"github.com/joshuapare/halfbit/owned"
)

// Error pairs an error code with a message that lives in allocator memory.
// Release returns the message to its allocator; the code survives.
type Error struct {
	code error
	msg  *owned.String
}

// NewError wraps a static message without allocating.
func NewError(code error, msg string) *Error {
	return &Error{code: code, msg: owned.MapString(msg)}
}

// Code returns the error code.
func (e *Error) Code() error { return e.code }

// Message returns the message, or "" when none could be stored. The result
// aliases allocator memory until Release.
func (e *Error) Message() string {
	if e.msg == nil {
		return ""
	}
	return e.msg.AsStr()
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.code == nil:
		return e.msgCopy()
	case e.msg == nil || e.msg.Len() == 0:
		return e.code.Error()
	default:
		return e.msgCopy() + ": " + e.code.Error()
	}
}

func (e *Error) msgCopy() string {
	if e.msg == nil {
		return ""
	}
	return e.msg.String()
}

// Unwrap returns the code so errors.Is matches it.
func (e *Error) Unwrap() error { return e.code }

// Release frees the message. It is safe to call more than once.
func (e *Error) Release() {
	if e.msg != nil {
		e.msg.Drop()
		e.msg = nil
	}
}
