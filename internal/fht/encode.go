package fht

import (
	"fmt"
	"strconv"
	"strings"
)

// Setpoint limits: the FHT80b maps OFF to 5.5 °C and ON to 30.5 °C.
const (
	tempOff = 5.5
	tempOn  = 30.5
)

// encodeTemp converts a temperature command to its 0.5 °C-step byte.
// Accepts case-insensitive "on"/"off" or a float literal within
// [5.5, 30.5] inclusive.
func encodeTemp(payload string) (byte, error) {
	var temp float64
	switch {
	case strings.EqualFold(payload, "off"):
		temp = tempOff
	case strings.EqualFold(payload, "on"):
		temp = tempOn
	default:
		var err error
		temp, err = strconv.ParseFloat(payload, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a temperature", ErrInvalidFormat, payload)
		}
		if temp < tempOff || temp > tempOn {
			return 0, fmt.Errorf("%w: %.1f outside [%.1f, %.1f]", ErrOutOfRange, temp, tempOff, tempOn)
		}
	}
	return byte(temp / tempStep), nil
}

// encodeMode converts a case-insensitive mode word to its wire value.
func encodeMode(payload string) (byte, error) {
	switch {
	case strings.EqualFold(payload, "auto"):
		return modeAuto, nil
	case strings.EqualFold(payload, "manual"):
		return modeManual, nil
	case strings.EqualFold(payload, "holiday"):
		return modeHoliday, nil
	}
	return 0, fmt.Errorf("%w: mode %q", ErrInvalidEnum, payload)
}

// encodeYear converts a literal year to its wire offset from 2000. Years
// below 2000 wrap through the byte conversion; the device clock cannot
// represent them.
func encodeYear(payload string) (byte, error) {
	year, err := strconv.ParseUint(payload, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a year", ErrInvalidFormat, payload)
	}
	return byte(int(year) - yearBase), nil
}

// encodeDateField builds an encoder for one bounded device clock field.
func encodeDateField(field string, limit byte) func(string) (byte, error) {
	return func(payload string) (byte, error) {
		v, err := strconv.ParseUint(payload, 10, 8)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a %s", ErrInvalidFormat, payload, field)
		}
		if byte(v) > limit {
			return 0, fmt.Errorf("%w: %s %d exceeds %d", ErrOutOfRange, field, v, limit)
		}
		return byte(v), nil
	}
}
