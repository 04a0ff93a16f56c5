package modem

import "errors"

var (
	// ErrNoDialer is returned when a Modem is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the modem.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a Modem
	// without a transport.
	ErrNotInitialized = errors.New("modem not initialized")

	// ErrAlreadyClosed is returned when Close is called on a Modem that has
	// already been closed.
	ErrAlreadyClosed = errors.New("modem already closed")

	// ErrSIMPinRequired is returned when the SIM card requires a PIN and no
	// PIN was provided in the Config.
	//
	// Callers may handle this error specially (for example, by prompting
	// the user for a PIN) and retry initialization.
	ErrSIMPinRequired = errors.New("SIM PIN required")

	// ErrLineBusy is returned when the communication line is held by another
	// operation. The call did not touch the modem and may be retried later.
	ErrLineBusy = errors.New("communication line busy")

	// ErrNoResponse is returned when every attempt of a command timed out
	// without the modem sending a single byte.
	ErrNoResponse = errors.New("no response from modem")

	// ErrResponseMismatch is returned when the modem answered but the
	// response did not contain the expected token. Typically the modem
	// replied with ERROR.
	ErrResponseMismatch = errors.New("unexpected response from modem")

	// ErrInvalidPosition is returned for storage positions below 1. SIM
	// phonebook and message storage are indexed from 1.
	ErrInvalidPosition = errors.New("invalid storage position")

	// ErrNotFound is returned when a phonebook position holds no entry.
	ErrNotFound = errors.New("entry not found")

	// ErrBearerUnavailable is returned when the packet data bearer required
	// for an HTTP session could not be opened.
	ErrBearerUnavailable = errors.New("bearer not available")

	// ErrNoFix is returned when the GPS receiver has no 2D or 3D fix.
	ErrNoFix = errors.New("no GPS fix")

	errFramerIdle = errors.New("framer not armed")
	errNoCommand  = errors.New("no command pending")
)
