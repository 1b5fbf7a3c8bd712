package collection

import "errors"

// Error classes. Every error returned by a Controller matches exactly one
// class with errors.Is, and also matches its underlying cause.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("record not found")
	ErrIngestion   = errors.New("media upload failed")
	ErrPersistence = errors.New("storage failure")
)

// Error carries a class, the failed operation and the cause.
type Error struct {
	Class error
	Op    string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil || e.Err == e.Class {
		return e.Op + ": " + e.Class.Error()
	}
	return e.Op + ": " + e.Class.Error() + ": " + e.Err.Error()
}

// Unwrap exposes both the class and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	return []error{e.Class, e.Err}
}

func classify(class error, op string, err error) error {
	if err == nil {
		err = class
	}
	return &Error{Class: class, Op: op, Err: err}
}

// Cause returns the underlying cause of a classified error, or err itself.
func Cause(err error) error {
	var ce *Error
	if errors.As(err, &ce) && ce.Err != nil {
		return ce.Err
	}
	return err
}
