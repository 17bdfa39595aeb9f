package hid

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/gregLibert/ledger-ssh/pkg/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevice records written packets and serves queued reads one per call.
type fakeDevice struct {
	written [][]byte
	reads   [][]byte
}

func (f *fakeDevice) Write(p []byte) (int, error) {
	f.written = append(f.written, bytes.Clone(p))
	return len(p), nil
}

func (f *fakeDevice) Read(p []byte) (int, error) {
	if len(f.reads) == 0 {
		return 0, io.EOF
	}
	n := copy(p, f.reads[0])
	f.reads = f.reads[1:]
	return n, nil
}

func TestWrap(t *testing.T) {
	t.Run("Single packet", func(t *testing.T) {
		packets, err := Wrap(DefaultChannel, hexutil.Hex("80 02 00 01 00"), PacketSize)
		require.NoError(t, err)
		require.Len(t, packets, 1)

		want := make([]byte, PacketSize)
		copy(want, hexutil.Hex("0101 05 0000 0005", "80 02 00 01 00"))
		assert.Equal(t, want, packets[0])
	})

	t.Run("Continuation packets", func(t *testing.T) {
		command := make([]byte, 150)
		for i := range command {
			command[i] = byte(i)
		}

		packets, err := Wrap(DefaultChannel, command, PacketSize)
		require.NoError(t, err)
		// 57 bytes in the first packet, 59 in each continuation.
		require.Len(t, packets, 3)

		assert.Equal(t, hexutil.Hex("0101 05 0000 0096"), packets[0][:7])
		assert.Equal(t, hexutil.Hex("0101 05 0001"), packets[1][:5])
		assert.Equal(t, hexutil.Hex("0101 05 0002"), packets[2][:5])

		joined := append(bytes.Clone(packets[0][7:]), packets[1][5:]...)
		joined = append(joined, packets[2][5:]...)
		assert.Equal(t, command, joined[:len(command)])
		assert.True(t, bytes.Equal(joined[len(command):], make([]byte, len(joined)-len(command))), "padding must be zero")
	})

	t.Run("Packet size too small", func(t *testing.T) {
		_, err := Wrap(DefaultChannel, []byte{1}, 7)
		assert.Error(t, err)
	})
}

func TestTransport_Exchange(t *testing.T) {
	reply := make([]byte, 66)
	reply[0] = 0x40
	reply[64], reply[65] = 0x90, 0x00

	responsePackets, err := Wrap(DefaultChannel, reply, PacketSize)
	require.NoError(t, err)
	require.Len(t, responsePackets, 2)

	dev := &fakeDevice{reads: responsePackets}
	got, err := New(dev).Exchange(context.Background(), hexutil.Hex("80 08 00 02", "CAFE"))
	require.NoError(t, err)
	assert.Equal(t, reply, got)

	require.Len(t, dev.written, 1)
	assert.Len(t, dev.written[0], PacketSize+1)
	assert.Equal(t, hexutil.Hex("00", "0101 05 0000 0007", "80 08 00 02 02 CAFE"), dev.written[0][:15])
}

func TestTransport_WithoutReportID(t *testing.T) {
	status, _ := Wrap(DefaultChannel, hexutil.Hex("9000"), PacketSize)
	dev := &fakeDevice{reads: status}

	tr := New(dev)
	tr.ReportID = false

	got, err := tr.Exchange(context.Background(), hexutil.Hex("80 02 00 01"))
	require.NoError(t, err)
	assert.Equal(t, hexutil.Hex("9000"), got)
	assert.Len(t, dev.written[0], PacketSize)
}

func TestTransport_FramingErrors(t *testing.T) {
	good, _ := Wrap(DefaultChannel, make([]byte, 100), PacketSize)

	tests := []struct {
		name  string
		reads [][]byte
	}{
		{"Wrong channel", func() [][]byte {
			p, _ := Wrap(0x0202, hexutil.Hex("9000"), PacketSize)
			return p
		}()},
		{"Wrong tag", [][]byte{hexutil.Hex("0101 06 0000 0002 9000")}},
		{"Wrong first sequence", [][]byte{hexutil.Hex("0101 05 0001 0002 9000")}},
		{"Out of order continuation", [][]byte{good[0], good[0]}},
		{"Truncated packet", [][]byte{hexutil.Hex("0101 05")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&fakeDevice{reads: tt.reads}).Exchange(context.Background(), hexutil.Hex("80 02 00 01"))
			assert.ErrorIs(t, err, ErrFraming)
		})
	}
}

func TestTransport_DeviceErrors(t *testing.T) {
	t.Run("Read error untouched", func(t *testing.T) {
		_, err := New(&fakeDevice{}).Exchange(context.Background(), hexutil.Hex("80 02 00 01"))
		assert.True(t, errors.Is(err, io.EOF))
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		dev := &fakeDevice{}
		_, err := New(dev).Exchange(ctx, hexutil.Hex("80 02 00 01"))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, dev.written)
	})
}
