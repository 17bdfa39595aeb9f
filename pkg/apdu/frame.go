package apdu

import (
	"errors"
	"fmt"
)

// Frame limits and constants according to ISO 7816-3.
const (
	// HeaderSize is the CLA, INS, P1, P2 prefix of every frame.
	HeaderSize = 4

	// MaxShortLc is the maximum data length (Nc) encodable in Short Length mode (1 byte).
	// It is also the per-frame data limit of the signing applet.
	MaxShortLc = 255

	// MaxExtendedLc is the theoretical limit for Lc in Extended mode (16-bit unsigned).
	MaxExtendedLc = 65535
)

// ErrMalformedCommand is returned by EncodeCommand for buffers that cannot be a frame.
var ErrMalformedCommand = errors.New("apdu: malformed command")

// Frame represents a command sent to the device.
type Frame struct {
	Class       byte
	Instruction byte
	P1, P2      byte
	Data        []byte
}

// NewFrame creates a frame.
func NewFrame(cla, ins, p1, p2 byte, data []byte) *Frame {
	return &Frame{
		Class:       cla,
		Instruction: ins,
		P1:          p1,
		P2:          p2,
		Data:        data,
	}
}

// Bytes encodes the frame as header followed by payload.
func (f *Frame) Bytes() []byte {
	out := make([]byte, 0, HeaderSize+len(f.Data))
	out = append(out, f.Class, f.Instruction, f.P1, f.P2)
	return append(out, f.Data...)
}

// String returns a readable representation of the frame meta-data.
func (f *Frame) String() string {
	return fmt.Sprintf("CLA: %02X | INS: %02X | P1: %02X, P2: %02X | Lc: %d",
		f.Class, f.Instruction, f.P1, f.P2, len(f.Data))
}

// EncodeCommand inserts the ISO 7816 Lc field into a serialized frame.
// It selects Short encoding (1 byte) when the data fits in MaxShortLc and
// Extended encoding (00 + 2 bytes Big Endian) otherwise. An empty payload
// still carries Lc = 00, which is what the applet firmware reads.
func EncodeCommand(raw []byte) ([]byte, error) {
	if len(raw) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrMalformedCommand, len(raw), HeaderSize)
	}

	data := raw[HeaderSize:]
	nc := len(data)
	if nc > MaxExtendedLc {
		return nil, fmt.Errorf("%w: data length %d exceeds %d", ErrMalformedCommand, nc, MaxExtendedLc)
	}

	out := make([]byte, 0, len(raw)+3)
	out = append(out, raw[:HeaderSize]...)

	if nc <= MaxShortLc {
		// Short: Lc (1 byte) + Data
		out = append(out, byte(nc))
	} else {
		// Extended: 00 + Lc (2 bytes) + Data
		out = append(out, 0x00, byte(nc>>8), byte(nc))
	}

	return append(out, data...), nil
}
