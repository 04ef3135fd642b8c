package fht

import (
	"fmt"
	"sync"
)

// Codec decodes inbound FHT frames and encodes outbound commands.
//
// All methods are safe for concurrent use. The only mutable state is the
// retained low half of split measured-temperature readings, keyed by
// hauscode so interleaved devices cannot corrupt each other's reading.
type Codec struct {
	mu      sync.Mutex
	lowHalf map[Hauscode]byte
}

// NewCodec creates a Codec with empty split-temperature state.
func NewCodec() *Codec {
	return &Codec{
		lowHalf: make(map[Hauscode]byte),
	}
}

// Decode translates one framed payload into a decoded message.
//
// The frame is classified by its magic prefix, the matching command
// descriptor is resolved by function id, and its decoder emits zero or
// more reports.
//
// Returns:
//   - Message: Kind, hauscode, and reports. Reports may be non-empty even
//     when an error is returned (e.g. an unknown mode value still emits a
//     placeholder report).
//   - error: ErrInvalidFrame, ErrUnknownCommand, a decoder error, or
//     ErrDeferred for the stored low half of a split reading.
func (c *Codec) Decode(p Payload) (Message, error) {
	kind, hc, raw, err := classifyFrame(p)
	if err != nil {
		return Message{}, err
	}

	cmd, ok := commandByID[raw.function]
	if !ok {
		return Message{}, fmt.Errorf("%w: function 0x%02X", ErrUnknownCommand, raw.function)
	}

	msg := Message{Kind: kind, Hauscode: hc}
	// The command name seeds the primary report topic; decoders may
	// override it or add a second report.
	err = cmd.decode(c, hc, raw, &msg, cmd.name)
	return msg, err
}

// EncodeCommand translates a named user command into an outbound frame.
//
// Parameters:
//   - hc: Target device address
//   - name: Command display name (e.g. "desired-temp")
//   - payload: Textual command value (e.g. "17.5", "auto", "off")
//
// Returns:
//   - Payload: The 7-byte command frame wrapped with the FHT telegram type
//   - error: ErrUnknownCommand for unrecognised names, ErrPermissionDenied
//     for read-only commands, or the encoder's validation error
func (c *Codec) EncodeCommand(hc Hauscode, name, payload string) (Payload, error) {
	cmd, ok := commandByName[name]
	if !ok {
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	if cmd.encode == nil {
		return Payload{}, fmt.Errorf("%w: %q", ErrPermissionDenied, name)
	}

	value, err := cmd.encode(payload)
	if err != nil {
		return Payload{}, fmt.Errorf("encoding %q: %w", name, err)
	}

	return buildCommand(hc, cmd.id, value), nil
}

// storeLowHalf retains the low byte of a split temperature reading for hc.
func (c *Codec) storeLowHalf(hc Hauscode, value byte) {
	c.mu.Lock()
	c.lowHalf[hc] = value
	c.mu.Unlock()
}

// takeLowHalf consumes the retained low byte for hc. An absent entry
// yields zero, so a high half without its low half produces a reading
// based on the zero value.
func (c *Codec) takeLowHalf(hc Hauscode) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	value := c.lowHalf[hc]
	delete(c.lowHalf, hc)
	return value
}
