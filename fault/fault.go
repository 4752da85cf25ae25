// Package fault holds the error classes of the storage core.
//
// Every error that leaves the storage core is either one of the class
// instances below or a *Error wrapping one of them together with the
// operation, the key or scope involved and the cause reported by the
// underlying engine. Callers tell the classes apart with errors.Is against the
// instances, or with the IsX helpers.
package fault

import (
	"errors"
	"fmt"

	"github.com/typedb/typedb-sub037/hex"
)

// error base
type GenericError string

// classes of errors
type EncodingError GenericError
type LifecycleError GenericError
type ConflictError GenericError
type ResourceError GenericError

// common errors - keep in alphabetic order within a class
var (
	ErrIncompatibleEncoding = EncodingError("stored encoding version is not supported")
	ErrMalformedKey         = EncodingError("malformed key")
	ErrUnrecognisedEncoding = EncodingError("unrecognised encoding")
	ErrUnsupportedValue     = EncodingError("value does not match value type")

	ErrAlreadyInitialised            = LifecycleError("keyspace is already initialised")
	ErrDatabaseClosed                = LifecycleError("database is closed")
	ErrEmptySequence                 = LifecycleError("sequence has no more elements")
	ErrIllegalWriteOnReadTransaction = LifecycleError("illegal write on a read transaction")
	ErrInvalidKeyspaceName           = LifecycleError("invalid keyspace name")
	ErrKeyspaceClosed                = LifecycleError("keyspace is closed")
	ErrKeyspaceExists                = LifecycleError("keyspace already exists")
	ErrKeyspaceNotFound              = LifecycleError("keyspace not found")
	ErrSessionClosed                 = LifecycleError("session is closed")
	ErrTransactionClosed             = LifecycleError("transaction is closed")

	ErrConflict = ConflictError("transaction conflict")

	ErrCounterExhausted = ResourceError("identifier counter exhausted")
	ErrStorage          = ResourceError("storage failure")
)

// the error interface methods
func (e GenericError) Error() string   { return string(e) }
func (e EncodingError) Error() string  { return string(e) }
func (e LifecycleError) Error() string { return string(e) }
func (e ConflictError) Error() string  { return string(e) }
func (e ResourceError) Error() string  { return string(e) }

// Error is a class error decorated with the operation that failed, the key or
// counter scope it failed on, and the cause if any.
type Error struct {
	Class error
	Op    string
	Scope []byte
	Cause error
}

// Wrap decorates a class error. cause may be nil.
func Wrap(class error, op string, scope []byte, cause error) *Error {
	return &Error{Class: class, Op: op, Scope: scope, Cause: cause}
}

// New decorates a class error that has no underlying cause.
func New(class error, op string, scope []byte) *Error {
	return &Error{Class: class, Op: op, Scope: scope}
}

func (e *Error) Error() string {
	s := e.Op + ": " + e.Class.Error()
	if len(e.Scope) > 0 {
		s += fmt.Sprintf(" [%s]", hex.Enc(e.Scope))
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

// Unwrap exposes both the class and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Class}
	}
	return []error{e.Class, e.Cause}
}

// determine the class of an error
func IsEncoding(e error) bool  { var t EncodingError; return errors.As(e, &t) }
func IsLifecycle(e error) bool { var t LifecycleError; return errors.As(e, &t) }
func IsConflict(e error) bool  { var t ConflictError; return errors.As(e, &t) }
func IsResource(e error) bool  { var t ResourceError; return errors.As(e, &t) }
