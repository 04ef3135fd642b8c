// Package fhz implements the serial link to an FHZ1000/1300 transceiver.
//
// The transceiver speaks a simple framed protocol: every telegram is
// wrapped as
//
//	0x81, length, type, checksum, data...
//
// where length counts the type, checksum, and data bytes, and the checksum
// is the byte sum of the data. This package frames outbound payloads,
// reassembles inbound ones from the byte stream, and hands them to a
// callback. Payload contents are opaque here; decoding belongs to the fht
// codec.
//
// # Connections
//
// Two connection URLs are supported:
//
//   - "tcp://host:port": a transceiver exposed over the network
//     (e.g. via ser2net)
//   - "serial:///dev/ttyUSB0": a local device node; the line discipline
//     and baud rate (9600 8N1) must be configured externally
//
// # Reliability
//
// On connection loss the client reconnects automatically with exponential
// backoff until Close is called. Inbound payloads are delivered from a
// single dispatch goroutine, preserving bus order; this matters for
// two-frame values such as the FHT measured temperature.
package fhz
