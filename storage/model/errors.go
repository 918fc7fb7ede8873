package model

import (
	"fmt"
)

// NotFoundError is an error signaling that a user is not present in the
// directory snapshot
type NotFoundError string

// Error implements the error interface
func (e NotFoundError) Error() string {
	return string(e)
}

// NotFoundErrorFmt returns a NotFoundError from the passed format string and parameters
func NotFoundErrorFmt(format string, params ...any) NotFoundError {
	return NotFoundError(fmt.Sprintf(format, params...))
}

// AlreadyExistsError is an error signaling that a login is already taken
type AlreadyExistsError string

// Error implements the error interface
func (e AlreadyExistsError) Error() string {
	return string(e)
}

// AlreadyExistsErrorFmt returns an AlreadyExistsError from the passed format string and parameters
func AlreadyExistsErrorFmt(format string, params ...any) AlreadyExistsError {
	return AlreadyExistsError(fmt.Sprintf(format, params...))
}

// SchemaError is an error signaling that the sheet's header row does not
// describe a usable account table
type SchemaError string

// Error implements the error interface
func (e SchemaError) Error() string {
	return string(e)
}

// SchemaErrorFmt returns a SchemaError from the passed format string and parameters
func SchemaErrorFmt(format string, params ...any) SchemaError {
	return SchemaError(fmt.Sprintf(format, params...))
}

// ConfigurationError is an error signaling that a required configuration
// value, such as the spreadsheet id or the credentials file, is missing.
// It is fatal: every call depending on the value fails fast with it.
type ConfigurationError string

// Error implements the error interface
func (e ConfigurationError) Error() string {
	return string(e)
}

// AuthenticationError is an error signaling that the handshake with the
// remote spreadsheet service failed; like ConfigurationError it makes all
// subsequent remote calls fail fast
type AuthenticationError string

// Error implements the error interface
func (e AuthenticationError) Error() string {
	return string(e)
}

// AuthenticationErrorFmt returns an AuthenticationError from the passed format string and parameters
func AuthenticationErrorFmt(format string, params ...any) AuthenticationError {
	return AuthenticationError(fmt.Sprintf(format, params...))
}

// RemoteUnavailableError is an error signaling that reading from the remote
// spreadsheet failed
type RemoteUnavailableError string

// Error implements the error interface
func (e RemoteUnavailableError) Error() string {
	return string(e)
}

// RemoteUnavailableErrorFmt returns a RemoteUnavailableError from the passed format string and parameters
func RemoteUnavailableErrorFmt(format string, params ...any) RemoteUnavailableError {
	return RemoteUnavailableError(fmt.Sprintf(format, params...))
}

// RemoteWriteError is an error signaling that an append, cell update or row
// deletion on the remote spreadsheet failed; none of the requested changes
// should be assumed applied
type RemoteWriteError string

// Error implements the error interface
func (e RemoteWriteError) Error() string {
	return string(e)
}

// RemoteWriteErrorFmt returns a RemoteWriteError from the passed format string and parameters
func RemoteWriteErrorFmt(format string, params ...any) RemoteWriteError {
	return RemoteWriteError(fmt.Sprintf(format, params...))
}
