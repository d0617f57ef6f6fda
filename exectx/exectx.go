// Package exectx carries what a unit of work needs from its host: the
// allocator for regular data, a separate allocator for error messages, and a
// logger.
//
// Error messages get their own allocator so that failures can still be
// described when the main allocator is exhausted. When the error allocator
// is exhausted too, errors degrade to their bare code.
package exectx

import (
	"log/slog"

	"github.com/joshuapare/halfbit/mem"
	"github.com/joshuapare/halfbit/owned"
)

// Context is the execution context handed to collaborators.
type Context struct {
	main mem.Ref
	errs mem.Ref
	log  *slog.Logger
}

// New builds a context. A nil logger discards all records.
func New(main, errs mem.Ref, log *slog.Logger) *Context {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Context{main: main, errs: errs, log: log}
}

// Main returns the allocator for regular data.
func (c *Context) Main() mem.Ref { return c.main }

// ErrorAllocator returns the allocator that backs error messages.
func (c *Context) ErrorAllocator() mem.Ref { return c.errs }

// Logger returns the context logger.
func (c *Context) Logger() *slog.Logger { return c.log }

// Errorf builds an error with the given code and a formatted message stored
// on the error allocator. If the message cannot be stored the error carries
// only its code.
func (c *Context) Errorf(code error, format string, args ...any) *Error {
	msg := owned.NewString(c.errs)
	if err := msg.Printf(format, args...); err != nil {
		msg.Drop()
		c.log.Debug("error message dropped",
			"allocator", c.errs.Name(),
			"code", code,
			"reason", mem.ErrorName(err))
		return &Error{code: code}
	}
	return &Error{code: code, msg: msg}
}
