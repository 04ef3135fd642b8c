package fht

import (
	"fmt"
	"strconv"
)

// Temperature scaling: setpoints travel as 0.5 °C steps from zero.
const tempStep = 0.5

// Valve scaling: position bytes scale against 255.
const valveScale = 255

// Status byte bits (function 0x44).
const (
	statusBitBattery = 1 << 0
	statusBitWindow  = 1 << 5
)

// Date field bounds. The year is unbounded on decode.
const (
	maxMonth  = 12
	maxDay    = 31
	maxHour   = 24
	maxMinute = 59
	yearBase  = 2000
)

// decodeTemp reports a linear temperature: value byte × 0.5 °C, one
// decimal. Never fails.
func decodeTemp(_ *Codec, _ Hauscode, raw rawFields, msg *Message, topic string) error {
	msg.addReport(topic, fmt.Sprintf("%.1f", float64(raw.value)*tempStep))
	return nil
}

// decodeMode reports the operating mode. Unknown values still emit a
// placeholder report so the frame is not dropped silently, but the decode
// is treated as erroneous.
func decodeMode(_ *Codec, _ Hauscode, raw rawFields, msg *Message, topic string) error {
	switch raw.value {
	case modeAuto:
		msg.addReport(topic, "auto")
	case modeManual:
		msg.addReport(topic, "manual")
	case modeHoliday:
		msg.addReport(topic, "holiday")
	default:
		msg.addReport(topic, "unknown")
		return fmt.Errorf("%w: mode %d", ErrInvalidEnum, raw.value)
	}
	return nil
}

// decodeMeasuredLow stores the low half of a split temperature reading.
// No report is emitted; the combined value follows with the high half.
func decodeMeasuredLow(c *Codec, hc Hauscode, raw rawFields, _ *Message, _ string) error {
	c.storeLowHalf(hc, raw.value)
	return ErrDeferred
}

// decodeMeasuredHigh combines the retained low half with the high byte:
// (low + high×256) / 10 °C, two decimals. A missing low half combines
// against zero.
func decodeMeasuredHigh(c *Codec, hc Hauscode, raw rawFields, msg *Message, topic string) error {
	low := c.takeLowHalf(hc)
	combined := (float64(low) + float64(raw.value)*256) / 10.0
	msg.addReport(topic, fmt.Sprintf("%.2f", combined))
	return nil
}

// decodeValve reports a valve position as a percentage of 255, overridden
// by out-of-band states in the low nibble of the status byte:
//
//	0x1  fully open (ON on the FHT80b)
//	0x2  fully closed (OFF)
//	0x0, 0x6  value byte is the raw position
//	0x8  value byte is a signed offset setting; reported on "offset" only
//	0xA  lime-protection run; the value still carries the position when the
//	     high nibble is 0xA/0xB, otherwise the state is undefined
//	0xC  pairing sync countdown; reported on "synctime" only
//	0xE  test mode, undefined
//	0xF  pairing; an extra "paired" report precedes the percentage
func decodeValve(_ *Codec, _ Hauscode, raw rawFields, msg *Message, topic string) error {
	position := raw.value
	high := raw.status >> 4

	switch raw.status & 0x0F {
	case 0x1:
		position = 0xFF
	case 0x2:
		position = 0
	case 0x0, 0x6:
		// value byte carries the position
	case 0x8:
		offset := int(raw.value & 0x7F)
		if raw.value&0x80 != 0 {
			offset = -offset
		}
		msg.addReport("offset", strconv.Itoa(offset))
		return nil
	case 0xA:
		if high != 0xA && high != 0xB {
			return fmt.Errorf("%w: lime-protection status 0x%02X", ErrInvalidState, raw.status)
		}
		// lime-protection pass: value byte still carries the position
	case 0xC:
		msg.addReport("synctime", strconv.Itoa(int(raw.value)/2-1))
		return nil
	case 0xE:
		return fmt.Errorf("%w: test status 0x%02X", ErrInvalidState, raw.status)
	case 0xF:
		msg.addReport("paired", "true")
	}

	msg.addReport(topic, fmt.Sprintf("%.1f", float64(position)*100/valveScale))
	return nil
}

// decodeStatus always emits exactly two reports: the window contact and
// the battery warning bit.
func decodeStatus(_ *Codec, _ Hauscode, raw rawFields, msg *Message, _ string) error {
	window := "close"
	if raw.value&statusBitWindow != 0 {
		window = "open"
	}
	msg.addReport("window", window)

	battery := "ok"
	if raw.value&statusBitBattery != 0 {
		battery = "empty"
	}
	msg.addReport("battery", battery)
	return nil
}

// decodeYear reports the device clock year. The wire carries years as an
// offset from 2000, unbounded.
func decodeYear(_ *Codec, _ Hauscode, raw rawFields, msg *Message, topic string) error {
	msg.addReport(topic, strconv.Itoa(int(raw.value)+yearBase))
	return nil
}

// decodeDateField builds a decoder for one bounded device clock field.
func decodeDateField(field string, limit byte) func(*Codec, Hauscode, rawFields, *Message, string) error {
	return func(_ *Codec, _ Hauscode, raw rawFields, msg *Message, topic string) error {
		if raw.value > limit {
			return fmt.Errorf("%w: %s %d exceeds %d", ErrOutOfRange, field, raw.value, limit)
		}
		msg.addReport(topic, strconv.Itoa(int(raw.value)))
		return nil
	}
}

// decodeIgnored accepts bus housekeeping frames without reporting.
func decodeIgnored(_ *Codec, _ Hauscode, _ rawFields, _ *Message, _ string) error {
	return nil
}
