// Package fht implements the FHT80b radiator-valve codec for the FHZ bus.
//
// FHT80b thermostats communicate over the ELV RF home-automation bus through
// an FHZ transceiver. Each bus frame addresses one device (by hauscode) and
// carries one function byte plus a value. This package translates framed
// payloads into named reports and user commands back into outbound frames.
//
// # Architecture
//
// The codec sits between the FHZ transport and the MQTT bridge:
//
//	┌─────────────┐           ┌─────────────┐          ┌──────────────┐
//	│ FHZ serial  │  Payload  │  fht.Codec  │  Report  │  MQTT bridge │
//	│  transport  │──────────►│ (this pkg)  │─────────►│              │
//	└─────────────┘           └─────────────┘          └──────────────┘
//
// # Frames
//
// Inbound frames carry a 4-byte magic prefix selecting the message kind
// (acknowledgement or status), the two-byte hauscode, a function id, and a
// value. Outbound command frames are always seven bytes:
//
//	{0x02, 0x01, 0x83, hauscode.upper, hauscode.lower, function, value}
//
// # Commands
//
// Recognised functions are listed in a process-wide read-only registry, one
// descriptor per function id. Named descriptors (e.g. "desired-temp",
// "valve/1") pick the MQTT report topic; a subset of them also accept
// encoded commands. Housekeeping codes (transmit markers, bus acks) decode
// to nothing.
//
// # State
//
// Decoding is pure except for the split measured-temperature reading, which
// arrives as two consecutive frames (low byte, then high byte). The Codec
// retains the low byte per hauscode until the matching high half arrives.
// The low-half decode returns ErrDeferred, which is not a failure; check it
// with errors.Is before treating a decode error as real.
//
// # Thread Safety
//
// The command registry is immutable after package init. Codec methods are
// safe for concurrent use; the split-temperature state is mutex-guarded.
package fht
