package fhz

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/olira/fhz2mqtt/internal/fht"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{"empty", nil, 0x00},
		{"single byte", []byte{0x42}, 0x42},
		{"sum", []byte{0x01, 0x02, 0x03}, 0x06},
		{"wraps at 256", []byte{0xFF, 0x02}, 0x01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checksum(tt.data); got != tt.want {
				t.Errorf("checksum(% X) = 0x%02X, want 0x%02X", tt.data, got, tt.want)
			}
		})
	}
}

func TestEncodeFrame(t *testing.T) {
	p := fht.Payload{
		Type: 0x04,
		Data: []byte{0x02, 0x01, 0x83, 30, 12, 0x41, 35},
	}

	got := encodeFrame(p)
	want := []byte{0x81, 0x09, 0x04, 0x14, 0x02, 0x01, 0x83, 30, 12, 0x41, 35}
	if !bytes.Equal(got, want) {
		t.Errorf("encodeFrame() = % X, want % X", got, want)
	}
}

func TestReadFrame(t *testing.T) {
	p := fht.Payload{Type: 0x04, Data: []byte{0x09, 0x09, 0xA0, 0x01, 0x12, 0x34, 0x00, 0x42, 0x00, 0x26}}
	wire := encodeFrame(p)

	tests := []struct {
		name   string
		stream []byte
	}{
		{"clean frame", wire},
		{"leading noise", append([]byte{0x00, 0xFF, 0x17}, wire...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readFrame(bufio.NewReader(bytes.NewReader(tt.stream)))
			if err != nil {
				t.Fatalf("readFrame() failed: %v", err)
			}
			if got.Type != p.Type {
				t.Errorf("Type = 0x%02X, want 0x%02X", got.Type, p.Type)
			}
			if !bytes.Equal(got.Data, p.Data) {
				t.Errorf("Data = % X, want % X", got.Data, p.Data)
			}
		})
	}
}

func TestReadFrameBadChecksum(t *testing.T) {
	wire := encodeFrame(fht.Payload{Type: 0x04, Data: []byte{0x01, 0x02}})
	wire[3] ^= 0xFF

	_, err := readFrame(bufio.NewReader(bytes.NewReader(wire)))
	if !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("readFrame() error = %v, want ErrInvalidFrame", err)
	}
}

func TestReadFrameBadLength(t *testing.T) {
	tests := []struct {
		name   string
		length byte
	}{
		{"too short", 0x01},
		{"too long", 0xFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := []byte{0x81, tt.length, 0x04, 0x00}
			_, err := readFrame(bufio.NewReader(bytes.NewReader(stream)))
			if !errors.Is(err, ErrInvalidFrame) {
				t.Errorf("readFrame() error = %v, want ErrInvalidFrame", err)
			}
		})
	}
}

func TestReadFrameTruncated(t *testing.T) {
	wire := encodeFrame(fht.Payload{Type: 0x04, Data: []byte{0x01, 0x02, 0x03}})

	_, err := readFrame(bufio.NewReader(bytes.NewReader(wire[:5])))
	if err == nil {
		t.Fatal("readFrame() succeeded on truncated stream")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("readFrame() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReadFrameResyncAfterError(t *testing.T) {
	// A corrupt frame must not poison the stream for the one after it.
	good := encodeFrame(fht.Payload{Type: 0x04, Data: []byte{0x42}})
	bad := encodeFrame(fht.Payload{Type: 0x04, Data: []byte{0x01}})
	bad[3] ^= 0xFF

	r := bufio.NewReader(bytes.NewReader(append(bad, good...)))

	if _, err := readFrame(r); !errors.Is(err, ErrInvalidFrame) {
		t.Fatalf("first readFrame() error = %v, want ErrInvalidFrame", err)
	}

	p, err := readFrame(r)
	if err != nil {
		t.Fatalf("second readFrame() failed: %v", err)
	}
	if !bytes.Equal(p.Data, []byte{0x42}) {
		t.Errorf("Data = % X, want 42", p.Data)
	}
}
