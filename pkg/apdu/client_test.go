package apdu

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gregLibert/ledger-ssh/pkg/apdu/apdutest"
	"github.com/gregLibert/ledger-ssh/pkg/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireOK(sw StatusWord) error {
	if sw != SW_NO_ERROR {
		return fmt.Errorf("status %s", sw.Verbose())
	}
	return nil
}

func TestClient_Send(t *testing.T) {
	dev := apdutest.NewDevice(apdutest.Reply(hexutil.Hex("CAFE"), 0x9000))
	client := NewClient(dev)

	tx, err := client.Send(context.Background(), NewFrame(0x80, 0x02, 0x00, 0x01, []byte{0x00}))
	require.NoError(t, err)
	require.NotNil(t, tx.Response)

	assert.Equal(t, hexutil.Hex("CAFE"), tx.Response.Data)
	assert.Equal(t, SW_NO_ERROR, tx.Response.Status)
	assert.Equal(t, [][]byte{hexutil.Hex("80 02 00 01 00")}, dev.Requests())
}

func TestClient_Send_TransportErrorUnwrapped(t *testing.T) {
	ioErr := errors.New("usb: device unplugged")
	client := NewClient(apdutest.NewDevice(apdutest.Fail(ioErr)))

	_, err := client.Send(context.Background(), NewFrame(0x80, 0x02, 0x00, 0x01, nil))
	assert.Same(t, ioErr, err)
}

func TestClient_Send_ShortReply(t *testing.T) {
	client := NewClient(apdutest.NewDevice(apdutest.Step{Reply: []byte{0x90}}))

	_, err := client.Send(context.Background(), NewFrame(0x80, 0x02, 0x00, 0x01, nil))
	assert.ErrorIs(t, err, ErrShortReply)
}

func TestClient_SendAll(t *testing.T) {
	frames := []*Frame{
		NewFrame(0x80, 0x04, 0x00, 0x01, []byte{0x01}),
		NewFrame(0x80, 0x04, 0x01, 0x01, []byte{0x02}),
		NewFrame(0x80, 0x04, 0x81, 0x01, []byte{0x03}),
	}

	t.Run("All chunks accepted", func(t *testing.T) {
		dev := apdutest.NewDevice(
			apdutest.Reply(nil, 0x9000),
			apdutest.Reply(nil, 0x9000),
			apdutest.Reply(hexutil.Hex("AABB"), 0x9000),
		)

		trace, err := NewClient(dev).SendAll(context.Background(), frames, requireOK)
		require.NoError(t, err)
		require.Len(t, trace, 3)
		assert.Equal(t, hexutil.Hex("AABB"), trace.Last().Response.Data)
		assert.Len(t, dev.Requests(), 3)
	})

	t.Run("Abort on rejected chunk", func(t *testing.T) {
		dev := apdutest.NewDevice(
			apdutest.Reply(nil, 0x9000),
			apdutest.Reply(nil, 0x6985),
			apdutest.Reply(nil, 0x9000),
		)

		trace, err := NewClient(dev).SendAll(context.Background(), frames, requireOK)
		require.Error(t, err)
		assert.Len(t, trace, 2)
		assert.Len(t, dev.Requests(), 2, "remaining chunks must not be sent")
		assert.Equal(t, 1, dev.Remaining())
	})

	t.Run("Cancelled context", func(t *testing.T) {
		dev := apdutest.NewDevice(apdutest.Reply(nil, 0x9000))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		trace, err := NewClient(dev).SendAll(ctx, frames, requireOK)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, trace)
		assert.Empty(t, dev.Requests())
	})
}
