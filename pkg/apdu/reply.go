package apdu

import (
	"errors"
	"fmt"
)

// ErrShortReply is returned when a reply cannot hold the 2-byte status word.
var ErrShortReply = errors.New("apdu: reply too short")

// Reply represents the answer from the device: payload followed by a status word.
type Reply struct {
	Data   []byte
	Status StatusWord
}

// ParseReply splits raw bytes received from the device into payload and status.
// The input must contain at least 2 bytes (SW1, SW2). Data aliases raw.
func ParseReply(raw []byte) (*Reply, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("%w: length %d", ErrShortReply, len(raw))
	}

	indexSW1 := len(raw) - 2

	return &Reply{
		Data:   raw[:indexSW1],
		Status: NewStatusWord(raw[indexSW1], raw[indexSW1+1]),
	}, nil
}

// String returns a readable representation of the reply.
func (r *Reply) String() string {
	return fmt.Sprintf("Data (%d bytes) | Status: %s", len(r.Data), r.Status.Verbose())
}
