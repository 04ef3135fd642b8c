package fht

import "fmt"

// Hauscode is the two-byte FHT device address, conventionally written as a
// 4-digit decimal string ("1234" → upper 12, lower 34).
//
// Immutable once built.
type Hauscode struct {
	Upper byte
	Lower byte
}

// hauscodeDigits is the exact length of a textual hauscode.
const hauscodeDigits = 4

// ParseHauscode parses a 4-digit decimal device address.
//
// Parameters:
//   - s: Address string, exactly four ASCII decimal digits (e.g. "1234")
//
// Returns:
//   - Hauscode: Parsed address
//   - error: ErrInvalidFormat if the string has the wrong length or holds
//     non-digit characters
func ParseHauscode(s string) (Hauscode, error) {
	if len(s) != hauscodeDigits {
		return Hauscode{}, fmt.Errorf("%w: hauscode must be 4 digits, got %q", ErrInvalidFormat, s)
	}
	for i := 0; i < hauscodeDigits; i++ {
		if s[i] < '0' || s[i] > '9' {
			return Hauscode{}, fmt.Errorf("%w: hauscode must be 4 digits, got %q", ErrInvalidFormat, s)
		}
	}
	return Hauscode{
		Upper: (s[0]-'0')*10 + (s[1] - '0'),
		Lower: (s[2]-'0')*10 + (s[3] - '0'),
	}, nil
}

// String renders the hauscode in its conventional 4-digit decimal form.
//
// Example: Hauscode{Upper: 12, Lower: 34}.String() == "1234"
func (h Hauscode) String() string {
	return fmt.Sprintf("%02d%02d", h.Upper, h.Lower)
}
