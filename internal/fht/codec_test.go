package fht

import (
	"errors"
	"testing"
)

var testHC = Hauscode{Upper: 12, Lower: 34}

// decodeOne decodes a frame and fails the test on unexpected errors.
func decodeOne(t *testing.T, c *Codec, p Payload) Message {
	t.Helper()
	msg, err := c.Decode(p)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	return msg
}

// wantReports compares the full report list.
func wantReports(t *testing.T, msg Message, want []Report) {
	t.Helper()
	if len(msg.Reports) != len(want) {
		t.Fatalf("got %d reports %v, want %d %v", len(msg.Reports), msg.Reports, len(want), want)
	}
	for i, r := range want {
		if msg.Reports[i] != r {
			t.Errorf("report[%d] = %+v, want %+v", i, msg.Reports[i], r)
		}
	}
}

func TestDecodeTemperatures(t *testing.T) {
	tests := []struct {
		name     string
		function byte
		value    byte
		want     Report
	}{
		{"desired-temp 17.5", funcDesiredTemp, 35, Report{"desired-temp", "17.5"}},
		{"desired-temp off", funcDesiredTemp, 11, Report{"desired-temp", "5.5"}},
		{"desired-temp on", funcDesiredTemp, 61, Report{"desired-temp", "30.5"}},
		{"manu-temp", funcManuTemp, 40, Report{"manu-temp", "20.0"}},
		{"day-temp", funcDayTemp, 42, Report{"day-temp", "21.0"}},
		{"night-temp", funcNightTemp, 33, Report{"night-temp", "16.5"}},
		{"window-open-temp", funcWindowOpenTemp, 24, Report{"window-open-temp", "12.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := decodeOne(t, NewCodec(), ackFrame(testHC, tt.function, tt.value))
			wantReports(t, msg, []Report{tt.want})
		})
	}
}

func TestDecodeMode(t *testing.T) {
	tests := []struct {
		name    string
		value   byte
		want    string
		wantErr bool
	}{
		{"auto", 0, "auto", false},
		{"manual", 1, "manual", false},
		{"holiday", 2, "holiday", false},
		{"unknown value", 3, "unknown", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewCodec().Decode(ackFrame(testHC, funcMode, tt.value))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEnum) {
					t.Errorf("Decode() error = %v, want ErrInvalidEnum", err)
				}
			} else if err != nil {
				t.Fatalf("Decode() failed: %v", err)
			}
			// Even the erroneous mode emits a placeholder report.
			wantReports(t, msg, []Report{{"mode", tt.want}})
		})
	}
}

func TestDecodeSplitTemperature(t *testing.T) {
	c := NewCodec()

	// Low half: stored, deferred, no report.
	msg, err := c.Decode(ackFrame(testHC, funcMeasuredLow, 200))
	if !errors.Is(err, ErrDeferred) {
		t.Fatalf("low half error = %v, want ErrDeferred", err)
	}
	if len(msg.Reports) != 0 {
		t.Fatalf("low half emitted reports: %v", msg.Reports)
	}

	// High half for the same device: combined reading.
	msg = decodeOne(t, c, ackFrame(testHC, funcMeasuredHigh, 1))
	wantReports(t, msg, []Report{{"is-temp", "45.60"}})

	// The stored half is consumed: a second high half reads against zero.
	msg = decodeOne(t, c, ackFrame(testHC, funcMeasuredHigh, 1))
	wantReports(t, msg, []Report{{"is-temp", "25.60"}})
}

func TestDecodeSplitTemperaturePerDevice(t *testing.T) {
	c := NewCodec()
	other := Hauscode{Upper: 56, Lower: 78}

	if _, err := c.Decode(ackFrame(testHC, funcMeasuredLow, 200)); !errors.Is(err, ErrDeferred) {
		t.Fatalf("low half error = %v, want ErrDeferred", err)
	}

	// A different device's high half must not consume testHC's low half.
	msg := decodeOne(t, c, ackFrame(other, funcMeasuredHigh, 1))
	wantReports(t, msg, []Report{{"is-temp", "25.60"}})

	msg = decodeOne(t, c, ackFrame(testHC, funcMeasuredHigh, 1))
	wantReports(t, msg, []Report{{"is-temp", "45.60"}})
}

func TestDecodeValve(t *testing.T) {
	tests := []struct {
		name     string
		function byte
		status   byte
		value    byte
		want     []Report
		wantErr  error
	}{
		{"nibble 0x1 is fully open", funcValveFirst, 0x21, 0x42, []Report{{"valve/1", "100.0"}}, nil},
		{"nibble 0x2 is fully closed", funcValveFirst, 0x22, 0x42, []Report{{"valve/1", "0.0"}}, nil},
		{"nibble 0x0 uses raw position", funcValveFirst, 0x20, 128, []Report{{"valve/1", "50.2"}}, nil},
		{"nibble 0x6 uses raw position", 0x02, 0x26, 255, []Report{{"valve/2", "100.0"}}, nil},
		{"is-valve reports on its own topic", funcIsValve, 0x20, 0, []Report{{"is-valve", "0.0"}}, nil},
		{"offset positive", funcValveFirst, 0x28, 0x03, []Report{{"offset", "3"}}, nil},
		{"offset negative", funcValveFirst, 0x28, 0x83, []Report{{"offset", "-3"}}, nil},
		{"lime-protection carries position", funcValveFirst, 0xAA, 128, []Report{{"valve/1", "50.2"}}, nil},
		{"lime-protection alt nibble", funcValveFirst, 0xBA, 64, []Report{{"valve/1", "25.1"}}, nil},
		{"lime-protection undefined", funcValveFirst, 0x2A, 128, nil, ErrInvalidState},
		{"synctime", funcValveFirst, 0x2C, 10, []Report{{"synctime", "4"}}, nil},
		{"test state", funcValveFirst, 0x2E, 0, nil, ErrInvalidState},
		{"pairing adds extra report", funcValveFirst, 0x2F, 128, []Report{{"paired", "true"}, {"valve/1", "50.2"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewCodec().Decode(statusFrame(testHC, tt.function, 0x00, tt.status, tt.value))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() failed: %v", err)
			}
			wantReports(t, msg, tt.want)
		})
	}
}

func TestDecodeStatus(t *testing.T) {
	tests := []struct {
		name  string
		value byte
		want  []Report
	}{
		{"window open, battery ok", 1 << 5, []Report{{"window", "open"}, {"battery", "ok"}}},
		{"window closed, battery empty", 1 << 0, []Report{{"window", "close"}, {"battery", "empty"}}},
		{"all clear", 0x00, []Report{{"window", "close"}, {"battery", "ok"}}},
		{"both set", 0x21, []Report{{"window", "open"}, {"battery", "empty"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := decodeOne(t, NewCodec(), statusFrame(testHC, funcStatus, 0x00, 0x00, tt.value))
			wantReports(t, msg, tt.want)
		})
	}
}

func TestDecodeDateFields(t *testing.T) {
	tests := []struct {
		name     string
		function byte
		value    byte
		want     string
		wantErr  bool
	}{
		{"year offset from 2000", funcYear, 24, "2024", false},
		{"year zero", funcYear, 0, "2000", false},
		{"month in range", funcMonth, 12, "12", false},
		{"month too large", funcMonth, 13, "", true},
		{"day in range", funcDay, 31, "31", false},
		{"day too large", funcDay, 32, "", true},
		{"hour 24 accepted", funcHour, 24, "24", false},
		{"hour too large", funcHour, 25, "", true},
		{"minute in range", funcMinute, 59, "59", false},
		{"minute too large", funcMinute, 60, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewCodec().Decode(ackFrame(testHC, tt.function, tt.value))
			if tt.wantErr {
				if !errors.Is(err, ErrOutOfRange) {
					t.Errorf("Decode() error = %v, want ErrOutOfRange", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() failed: %v", err)
			}
			if len(msg.Reports) != 1 || msg.Reports[0].Value != tt.want {
				t.Errorf("reports = %v, want one report %q", msg.Reports, tt.want)
			}
		})
	}
}

func TestDecodeIgnoredFunctions(t *testing.T) {
	for _, function := range []byte{funcAck, funcAck2, funcCanXmit, funcCanRcv, funcStartXmit, funcEndXmit} {
		msg, err := NewCodec().Decode(ackFrame(testHC, function, 0x42))
		if err != nil {
			t.Errorf("function 0x%02X: Decode() failed: %v", function, err)
		}
		if len(msg.Reports) != 0 {
			t.Errorf("function 0x%02X emitted reports: %v", function, msg.Reports)
		}
	}
}

func TestDecodeUnknownFunction(t *testing.T) {
	_, err := NewCodec().Decode(ackFrame(testHC, 0xF0, 0x00))
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Decode() error = %v, want ErrUnknownCommand", err)
	}
}

func TestDecodeCarriesKindAndHauscode(t *testing.T) {
	msg := decodeOne(t, NewCodec(), statusFrame(testHC, funcStatus, 0x00, 0x00, 0x00))
	if msg.Kind != KindStatus {
		t.Errorf("Kind = %v, want status", msg.Kind)
	}
	if msg.Hauscode != testHC {
		t.Errorf("Hauscode = %v, want %v", msg.Hauscode, testHC)
	}
}
