package apdu

import (
	"context"

	"github.com/gregLibert/ledger-ssh/pkg/hexutil"
	"github.com/rs/zerolog"
)

// CLIENT & PROTOCOL LOGIC:
// The Client drives the exchange of frames over a transport. It serializes a
// frame, performs exactly one round trip, and splits the reply into payload
// and status word. Multi-frame operations go through SendAll, which stops at
// the first reply rejected by the caller's status check.
//
// Transport and context errors are returned exactly as the transport produced
// them; the client never retries.

// Exchanger abstracts the physical device connection.
// Exchange performs one request/response cycle and must honour ctx.
type Exchanger interface {
	Exchange(ctx context.Context, request []byte) ([]byte, error)
}

// StatusCheck decides whether a reply status allows the operation to go on.
type StatusCheck func(StatusWord) error

// Client manages the frame-level communication with the device.
type Client struct {
	Transport Exchanger
	Logger    zerolog.Logger
}

// NewClient creates a new Client instance that does not log.
func NewClient(transport Exchanger) *Client {
	return &Client{Transport: transport, Logger: zerolog.Nop()}
}

// Send transmits one frame and parses the reply.
func (c *Client) Send(ctx context.Context, f *Frame) (Transaction, error) {
	tx := Transaction{Command: f}

	c.Logger.Debug().
		Str("frame", f.String()).
		Str("data", hexutil.Dump(f.Data, 64)).
		Msg("exchange")

	raw, err := c.Transport.Exchange(ctx, f.Bytes())
	if err != nil {
		return tx, err
	}

	reply, err := ParseReply(raw)
	if err != nil {
		return tx, err
	}
	tx.Response = reply

	c.Logger.Debug().
		Str("sw", reply.Status.Verbose()).
		Int("len", len(reply.Data)).
		Msg("reply")

	return tx, nil
}

// SendAll transmits frames strictly in order. After each reply the status is
// passed to check; a non-nil result aborts the sequence and is returned as is.
// The trace holds every transaction performed, including the rejected one.
func (c *Client) SendAll(ctx context.Context, frames []*Frame, check StatusCheck) (Trace, error) {
	trace := make(Trace, 0, len(frames))

	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			return trace, err
		}

		tx, err := c.Send(ctx, f)
		if err != nil {
			return trace, err
		}
		trace = append(trace, tx)

		if err := check(tx.Response.Status); err != nil {
			c.Logger.Debug().
				Int("chunk", i).
				Int("chunks", len(frames)).
				Str("sw", tx.Response.Status.Verbose()).
				Msg("sequence aborted")
			return trace, err
		}
	}

	return trace, nil
}
