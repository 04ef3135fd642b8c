package fht

import (
	"bytes"
	"fmt"
)

// FHZ telegram type tags. The transport wraps every payload with one of
// these; the codec only ever builds outbound FHT telegrams.
const (
	// TypeFHTSend is the telegram type for outbound FHT commands.
	TypeFHTSend byte = 0x04
)

// Frame layout constants (0-based byte offsets into the payload data).
const (
	// minFrameLen is the minimum length of any classifiable frame.
	minFrameLen = 9

	// statusFrameLen is the exact length a status frame must have.
	statusFrameLen = 10

	offsetHauscodeUpper = 4
	offsetHauscodeLower = 5
	offsetFunction      = 6
	offsetAckValue      = 7
	offsetSubfunction   = 7
	offsetStatusBits    = 8
	offsetStatusValue   = 9
)

// Frame magic prefixes selecting the message kind.
var (
	magicAck    = []byte{0x83, 0x09, 0x83, 0x01}
	magicStatus = []byte{0x09, 0x09, 0xA0, 0x01}
)

// Payload is a framed byte payload exchanged with the FHZ transport. The
// transport strips (inbound) or adds (outbound) the serial framing; the
// codec only sees the telegram type tag and the data bytes.
type Payload struct {
	// Type is the FHZ telegram type tag.
	Type byte

	// Data is the framed payload, read-only for inbound frames.
	Data []byte
}

// MessageKind is the kind of an inbound FHT message.
type MessageKind int

// Message kinds, selected by the frame's magic prefix.
const (
	// KindAck is a short acknowledgement frame carrying a bare value.
	KindAck MessageKind = iota

	// KindStatus is a full status frame carrying subfunction and status bits.
	KindStatus
)

// String returns a human-readable message kind.
func (k MessageKind) String() string {
	switch k {
	case KindAck:
		return "ack"
	case KindStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Report is one decoded fact, ready to publish: a topic suffix and a
// textual value.
type Report struct {
	Topic string
	Value string
}

// Message is the result of decoding one inbound frame. A decode may emit
// zero, one, or two reports.
type Message struct {
	Kind     MessageKind
	Hauscode Hauscode
	Reports  []Report
}

// addReport appends one report to the message.
func (m *Message) addReport(topic, value string) {
	m.Reports = append(m.Reports, Report{Topic: topic, Value: value})
}

// rawFields holds the bytes extracted from a classified frame. Subfunction
// and status bits are only populated for status frames.
type rawFields struct {
	function    byte
	subfunction byte
	status      byte
	value       byte
}

// classifyFrame inspects the magic prefix of a payload, validates its
// length, and extracts the raw fields and hauscode.
//
// Returns ErrInvalidFrame when the payload is shorter than nine bytes, the
// prefix matches neither magic, or a status frame is not exactly ten bytes.
func classifyFrame(p Payload) (MessageKind, Hauscode, rawFields, error) {
	var raw rawFields

	if len(p.Data) < minFrameLen {
		return 0, Hauscode{}, raw, fmt.Errorf("%w: %d bytes, need at least %d", ErrInvalidFrame, len(p.Data), minFrameLen)
	}

	var kind MessageKind
	switch {
	case bytes.HasPrefix(p.Data, magicAck):
		kind = KindAck
		raw.value = p.Data[offsetAckValue]
	case bytes.HasPrefix(p.Data, magicStatus):
		if len(p.Data) != statusFrameLen {
			return 0, Hauscode{}, raw, fmt.Errorf("%w: status frame must be %d bytes, got %d", ErrInvalidFrame, statusFrameLen, len(p.Data))
		}
		kind = KindStatus
		raw.subfunction = p.Data[offsetSubfunction]
		raw.status = p.Data[offsetStatusBits]
		raw.value = p.Data[offsetStatusValue]
	default:
		return 0, Hauscode{}, raw, fmt.Errorf("%w: unrecognised magic % X", ErrInvalidFrame, p.Data[:4])
	}
	raw.function = p.Data[offsetFunction]

	// The hauscode travels as raw bytes, not re-parsed as text.
	hc := Hauscode{
		Upper: p.Data[offsetHauscodeUpper],
		Lower: p.Data[offsetHauscodeLower],
	}

	return kind, hc, raw, nil
}

// buildCommand assembles the fixed 7-byte outbound command frame. Inputs
// are already byte-range constrained; no further validation happens here.
func buildCommand(hc Hauscode, function, value byte) Payload {
	return Payload{
		Type: TypeFHTSend,
		Data: []byte{0x02, 0x01, 0x83, hc.Upper, hc.Lower, function, value},
	}
}
