package fhz

import (
	"bufio"
	"fmt"
	"io"

	"github.com/olira/fhz2mqtt/internal/fht"
)

// FHZ serial framing constants.
const (
	// frameDelimiter starts every telegram on the wire.
	frameDelimiter = 0x81

	// frameOverhead is the number of bytes the length field covers beyond
	// the data: the telegram type and the checksum.
	frameOverhead = 2

	// maxDataLen bounds the data portion of one telegram. The FHZ never
	// sends anything near the length-field maximum; anything larger
	// indicates stream desynchronisation.
	maxDataLen = 125
)

// checksum is the byte sum of the telegram data.
func checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// encodeFrame wraps a payload in the FHZ wire format.
//
// Output layout:
//
//	Byte 0: 0x81 delimiter
//	Byte 1: length (type + checksum + data)
//	Byte 2: telegram type
//	Byte 3: checksum over data
//	Byte 4+: data
func encodeFrame(p fht.Payload) []byte {
	buf := make([]byte, 0, 4+len(p.Data))
	buf = append(buf, frameDelimiter, byte(len(p.Data)+frameOverhead), p.Type, checksum(p.Data))
	return append(buf, p.Data...)
}

// readFrame reads one framed telegram from the stream. Bytes before the
// next delimiter are discarded; the FHZ occasionally emits noise between
// telegrams and after power-up.
//
// Returns ErrInvalidFrame for impossible lengths or checksum mismatches;
// the caller resynchronises by reading on.
func readFrame(r *bufio.Reader) (fht.Payload, error) {
	// Sync to the next delimiter.
	for {
		b, err := r.ReadByte()
		if err != nil {
			return fht.Payload{}, err
		}
		if b == frameDelimiter {
			break
		}
	}

	header := make([]byte, 3) // length, type, checksum
	if _, err := io.ReadFull(r, header); err != nil {
		return fht.Payload{}, err
	}

	length := int(header[0])
	if length < frameOverhead || length > maxDataLen+frameOverhead {
		return fht.Payload{}, fmt.Errorf("%w: length %d", ErrInvalidFrame, length)
	}

	data := make([]byte, length-frameOverhead)
	if _, err := io.ReadFull(r, data); err != nil {
		return fht.Payload{}, err
	}

	if got, want := checksum(data), header[2]; got != want {
		return fht.Payload{}, fmt.Errorf("%w: checksum 0x%02X, want 0x%02X", ErrInvalidFrame, got, want)
	}

	return fht.Payload{Type: header[1], Data: data}, nil
}
