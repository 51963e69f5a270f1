package errors

import "github.com/juju/errors"

// New is equivalent to New from the github.com/juju/errors package.
func New(message string) error {
	return errors.New(message)
}

// Annotate is equivalent to Annotate from the github.com/juju/errors package.
func Annotate(other error, message string) error {
	return errors.Annotate(other, message)
}

// Annotatef is equivalent to Annotatef from the github.com/juju/errors package.
func Annotatef(other error, format string, args ...interface{}) error {
	return errors.Annotatef(other, format, args...)
}

// Errorf is equivalent to Errorf from the github.com/juju/errors package.
func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// Cause is equivalent to Cause from the github.com/juju/errors package.
func Cause(err error) error {
	return errors.Cause(err)
}
