// Package pcsc carries frames to a device reachable through a PC/SC reader.
package pcsc

import (
	"context"
	"errors"
	"fmt"

	"github.com/ebfe/scard"
	"github.com/gregLibert/ledger-ssh/pkg/apdu"
)

// ErrNoReader is returned by Connect when no reader is attached.
var ErrNoReader = errors.New("pcsc: no smart card reader found")

// Transmitter abstracts the physical card connection. *scard.Card satisfies it.
type Transmitter interface {
	Transmit(cmd []byte) ([]byte, error)
}

// Transport adapts a Transmitter to apdu.Exchanger. Frames are sent with the
// ISO 7816 Lc field inserted.
type Transport struct {
	Card Transmitter
}

// New creates a Transport over card.
func New(card Transmitter) *Transport {
	return &Transport{Card: card}
}

// Exchange performs one blocking Transmit. The context is checked before and
// after the call, since PC/SC offers no way to interrupt a transmission.
func (t *Transport) Exchange(ctx context.Context, request []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd, err := apdu.EncodeCommand(request)
	if err != nil {
		return nil, err
	}

	resp, err := t.Card.Transmit(cmd)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// Conn is a Transport bound to a connected reader. Close releases both the
// card and the PC/SC context.
type Conn struct {
	*Transport

	Reader string

	ctx  *scard.Context
	card *scard.Card
}

// Connect establishes a PC/SC context and connects to reader, or to the first
// reader found when reader is empty.
func Connect(reader string) (*Conn, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("establishing context: %w", err)
	}

	if reader == "" {
		reader, err = firstReader(ctx.ListReaders())
		if err != nil {
			_ = ctx.Release()
			return nil, err
		}
	}

	// Force T=0 or T=1 to avoid "Parameter Incorrect" errors (Error 57)
	card, err := ctx.Connect(reader, scard.ShareShared, scard.ProtocolT0|scard.ProtocolT1)
	if err != nil {
		_ = ctx.Release()
		return nil, fmt.Errorf("connecting to %s: %w", reader, err)
	}

	return &Conn{
		Transport: New(card),
		Reader:    reader,
		ctx:       ctx,
		card:      card,
	}, nil
}

func firstReader(readers []string, err error) (string, error) {
	if err != nil {
		return "", fmt.Errorf("listing readers: %w", err)
	}
	if len(readers) == 0 {
		return "", ErrNoReader
	}
	return readers[0], nil
}

// Close disconnects the card and releases the context.
func (c *Conn) Close() error {
	disconnectErr := c.card.Disconnect(scard.LeaveCard)
	releaseErr := c.ctx.Release()

	if disconnectErr != nil {
		return fmt.Errorf("disconnecting card: %w", disconnectErr)
	}
	if releaseErr != nil {
		return fmt.Errorf("releasing context: %w", releaseErr)
	}
	return nil
}
