package fhz

import "errors"

// Domain errors for the FHZ transport package.
var (
	// ErrNotConnected is returned when an operation requires a connection
	// but the client is not connected to the transceiver.
	ErrNotConnected = errors.New("fhz: not connected to transceiver")

	// ErrConnectionFailed is returned when connecting to the transceiver fails.
	ErrConnectionFailed = errors.New("fhz: connection failed")

	// ErrInvalidFrame is returned when the byte stream holds a frame with
	// an impossible length or a checksum mismatch.
	ErrInvalidFrame = errors.New("fhz: invalid frame")

	// ErrSendFailed is returned when writing a telegram to the transceiver fails.
	ErrSendFailed = errors.New("fhz: send failed")
)
