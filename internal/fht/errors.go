package fht

import "errors"

// Domain errors for the FHT codec package.
var (
	// ErrInvalidFormat is returned when a textual input (hauscode, command
	// payload) does not parse.
	ErrInvalidFormat = errors.New("fht: invalid format")

	// ErrInvalidFrame is returned when a bus frame is too short or its
	// magic prefix matches no known message kind.
	ErrInvalidFrame = errors.New("fht: invalid frame")

	// ErrUnknownCommand is returned when a function id or command name
	// matches no registry entry. Structurally valid but unmatched frames
	// surface this error rather than being dropped silently.
	ErrUnknownCommand = errors.New("fht: unknown command")

	// ErrInvalidEnum is returned when an enumerated value (mode) is outside
	// its defined set.
	ErrInvalidEnum = errors.New("fht: invalid enum value")

	// ErrOutOfRange is returned when a numeric value violates its bounds.
	ErrOutOfRange = errors.New("fht: value out of range")

	// ErrInvalidState is returned when a valve status byte carries a state
	// combination the protocol does not define.
	ErrInvalidState = errors.New("fht: invalid state bits")

	// ErrPermissionDenied is returned when encoding is attempted for a
	// read-only command.
	ErrPermissionDenied = errors.New("fht: command is read-only")

	// ErrDeferred signals that a decode consumed the frame but produced no
	// report yet: the low half of a split temperature reading was stored
	// and the combined value will be reported with the high half. It is
	// not a failure; distinguish it with errors.Is.
	ErrDeferred = errors.New("fht: report deferred until second half")
)
