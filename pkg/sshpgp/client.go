package sshpgp

import (
	"context"
	"fmt"

	"github.com/gregLibert/ledger-ssh/pkg/apdu"
	"github.com/gregLibert/ledger-ssh/pkg/bits"
	"github.com/gregLibert/ledger-ssh/pkg/der"
	"github.com/gregLibert/ledger-ssh/pkg/keypath"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// SIGN DATA STATE MACHINE:
//
//	Idle -> Sending(0) -> ... -> Sending(n-1) -> Done
//	                 \__________________________/-> Failed
//
// Each chunk reply is classified before the next chunk is sent. A rejected
// status moves to Failed with the classified error; chunks already sent are
// not undone and nothing is retried. Only the reply to the last chunk carries
// the signature. GetPublicKey and SignDirectHash are single frames:
// Idle -> Sent -> Done | Failed.

// TraceHook receives the trace of every operation, successful or not.
type TraceHook func(op string, trace apdu.Trace)

// Client talks to the SSH/PGP applet. It holds no per-call state; callers
// sharing one transport must serialize their calls.
type Client struct {
	conn     *apdu.Client
	protocol Protocol
	logger   zerolog.Logger
	onTrace  TraceHook
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithProtocol replaces the protocol table, e.g. for another firmware revision.
func WithProtocol(p Protocol) Option {
	return func(c *Client) {
		c.protocol = p
	}
}

// WithTraceHook registers a hook receiving the exchanges of each operation.
func WithTraceHook(hook TraceHook) Option {
	return func(c *Client) {
		c.onTrace = hook
	}
}

// NewClient creates a client over transport.
func NewClient(transport apdu.Exchanger, opts ...Option) *Client {
	c := &Client{
		protocol: DefaultProtocol(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.conn = apdu.NewClient(transport)
	c.conn.Logger = c.logger
	return c
}

// GetPublicKey returns the public key derived at path on curve.
func (c *Client) GetPublicKey(ctx context.Context, path string, curve Curve) (PublicKey, error) {
	p2, encoded, err := c.prepare(path, curve)
	if err != nil {
		return nil, err
	}

	frame, err := c.singleFrame(c.protocol.InsGetPublicKey, c.protocol.P1GetPublicKey, p2, encoded)
	if err != nil {
		return nil, err
	}

	data, err := c.run(ctx, "get-public-key", []*apdu.Frame{frame})
	if err != nil {
		return nil, err
	}
	return DecodePublicKey(curve, data)
}

// SignData asks the device to sign challenge with the key at path.
// The payload is split into as many frames as the data limit requires.
func (c *Client) SignData(ctx context.Context, path string, curve Curve, challenge []byte) (Signature, error) {
	p2, encoded, err := c.prepare(path, curve)
	if err != nil {
		return nil, err
	}

	payload := append(encoded, challenge...)
	header := apdu.Frame{Class: c.protocol.Class, Instruction: c.protocol.InsSign, P2: p2}

	frames, err := apdu.BuildChunkedFrames(header, payload, c.protocol.DataLimit, c.protocol.SignChunks)
	if err != nil {
		return nil, formatError("chunking: %v", err)
	}

	data, err := c.run(ctx, "sign-data", frames)
	if err != nil {
		return nil, err
	}
	return c.decodeSignature("sign-data", curve, data)
}

// SignDirectHash asks the device to sign a precomputed digest in one frame.
func (c *Client) SignDirectHash(ctx context.Context, path string, curve Curve, hash []byte) (Signature, error) {
	p2, encoded, err := c.prepare(path, curve)
	if err != nil {
		return nil, err
	}

	if len(hash) != c.protocol.HashSize {
		return nil, formatError("hash of %d bytes, want %d", len(hash), c.protocol.HashSize)
	}

	frame, err := c.singleFrame(c.protocol.InsSignDirectHash, c.protocol.P1SignDirectHash, p2, append(encoded, hash...))
	if err != nil {
		return nil, err
	}

	data, err := c.run(ctx, "sign-direct-hash", []*apdu.Frame{frame})
	if err != nil {
		return nil, err
	}
	return c.decodeSignature("sign-direct-hash", curve, data)
}

// prepare validates the curve first, then encodes the key path.
func (c *Client) prepare(path string, curve Curve) (byte, []byte, error) {
	p2, err := c.protocol.curveParam(curve)
	if err != nil {
		return 0, nil, err
	}

	encoded, err := keypath.Encode(path)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return p2, encoded, nil
}

func (c *Client) singleFrame(ins, p1, p2 byte, payload []byte) (*apdu.Frame, error) {
	if len(payload) > c.protocol.DataLimit {
		return nil, formatError("payload of %d bytes exceeds frame limit %d", len(payload), c.protocol.DataLimit)
	}
	return apdu.NewFrame(c.protocol.Class, ins, p1, p2, payload), nil
}

// run sends frames in order and returns the payload of the last reply.
func (c *Client) run(ctx context.Context, op string, frames []*apdu.Frame) ([]byte, error) {
	c.logger.Debug().
		Str("op", op).
		Int("frames", len(frames)).
		Msg("start")

	trace, err := c.conn.SendAll(ctx, frames, StatusError)
	if c.onTrace != nil {
		c.onTrace(op, trace)
	}

	if err != nil {
		if errors.Is(err, apdu.ErrShortReply) {
			return nil, fmt.Errorf("%w: %w", ErrFormat, err)
		}
		c.logger.Debug().Str("op", op).Err(err).Msg("failed")
		return nil, err
	}

	c.logger.Debug().Str("op", op).Msg("done")
	return trace.Last().Response.Data, nil
}

func (c *Client) decodeSignature(op string, curve Curve, data []byte) (Signature, error) {
	if curve == CurveNistP256 {
		if e := c.logger.Debug(); e.Enabled() {
			e.Str("op", op).
				Bool("odd_parity_tag", len(data) > 0 && bits.IsSet(data[0], 1)).
				Msg("signature envelope:\n" + der.Describe(data))
		}
	}

	decoder := SignatureDecoder{FixOddParityTag: c.protocol.FixOddParityTag}
	return decoder.Decode(curve, data)
}
