// Package hid carries frames over the HID channel of a Ledger-style device.
//
// A command (with its Lc field) is cut into fixed-size packets:
//
//	channel(2) | tag 0x05 | sequence(2) | [length(2), first packet only] | data...
//
// Packets are zero padded to the packet size. The reply uses the same
// framing; its first packet announces the total reply length.
package hid

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gregLibert/ledger-ssh/pkg/apdu"
)

const (
	// DefaultChannel is the channel identifier used by Ledger devices.
	DefaultChannel uint16 = 0x0101
	// PacketSize is the HID report size.
	PacketSize = 64

	tagAPDU byte = 0x05

	headerSize      = 5
	firstHeaderSize = headerSize + 2
)

// ErrFraming is returned for reply packets that do not follow the framing.
var ErrFraming = errors.New("hid: invalid framing")

// Transport exchanges frames over a HID handle such as an opened /dev/hidrawN.
type Transport struct {
	Device     io.ReadWriter
	Channel    uint16
	PacketSize int
	// ReportID prefixes every written packet with a 0x00 report number, as
	// required by hidraw for devices without numbered reports.
	ReportID bool
}

// New creates a Transport with the Ledger defaults.
func New(device io.ReadWriter) *Transport {
	return &Transport{
		Device:     device,
		Channel:    DefaultChannel,
		PacketSize: PacketSize,
		ReportID:   true,
	}
}

// Exchange writes the framed command and reassembles the framed reply.
// The context is checked between packets.
func (t *Transport) Exchange(ctx context.Context, request []byte) ([]byte, error) {
	cmd, err := apdu.EncodeCommand(request)
	if err != nil {
		return nil, err
	}

	packets, err := Wrap(t.Channel, cmd, t.PacketSize)
	if err != nil {
		return nil, err
	}

	for _, packet := range packets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if t.ReportID {
			packet = append([]byte{0x00}, packet...)
		}
		if _, err := t.Device.Write(packet); err != nil {
			return nil, err
		}
	}

	return t.readReply(ctx)
}

func (t *Transport) readReply(ctx context.Context) ([]byte, error) {
	var reply []byte
	total := -1
	buf := make([]byte, t.PacketSize)

	for seq := uint16(0); total < 0 || len(reply) < total; seq++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := t.Device.Read(buf)
		if err != nil {
			return nil, err
		}

		data, length, err := unwrapPacket(t.Channel, seq, buf[:n])
		if err != nil {
			return nil, err
		}
		if seq == 0 {
			total = length
		}
		reply = append(reply, data...)
	}

	return reply[:total], nil
}

// Wrap cuts command into zero padded packets of packetSize bytes.
func Wrap(channel uint16, command []byte, packetSize int) ([][]byte, error) {
	if packetSize <= firstHeaderSize {
		return nil, fmt.Errorf("packet size %d too small", packetSize)
	}
	if len(command) > 0xFFFF {
		return nil, fmt.Errorf("command of %d bytes cannot be framed", len(command))
	}

	var packets [][]byte
	remaining := command

	for seq := uint16(0); seq == 0 || len(remaining) > 0; seq++ {
		packet := make([]byte, packetSize)
		binary.BigEndian.PutUint16(packet[0:2], channel)
		packet[2] = tagAPDU
		binary.BigEndian.PutUint16(packet[3:5], seq)

		offset := headerSize
		if seq == 0 {
			binary.BigEndian.PutUint16(packet[5:7], uint16(len(command)))
			offset = firstHeaderSize
		}

		n := copy(packet[offset:], remaining)
		remaining = remaining[n:]
		packets = append(packets, packet)
	}

	return packets, nil
}

// unwrapPacket validates one reply packet and returns its data. The announced
// reply length is only meaningful for sequence 0.
func unwrapPacket(channel, seq uint16, packet []byte) ([]byte, int, error) {
	header := headerSize
	if seq == 0 {
		header = firstHeaderSize
	}
	if len(packet) < header {
		return nil, 0, fmt.Errorf("%w: packet of %d bytes", ErrFraming, len(packet))
	}

	if got := binary.BigEndian.Uint16(packet[0:2]); got != channel {
		return nil, 0, fmt.Errorf("%w: channel %04X, want %04X", ErrFraming, got, channel)
	}
	if packet[2] != tagAPDU {
		return nil, 0, fmt.Errorf("%w: tag %02X", ErrFraming, packet[2])
	}
	if got := binary.BigEndian.Uint16(packet[3:5]); got != seq {
		return nil, 0, fmt.Errorf("%w: sequence %d, want %d", ErrFraming, got, seq)
	}

	length := 0
	if seq == 0 {
		length = int(binary.BigEndian.Uint16(packet[5:7]))
	}
	return packet[header:], length, nil
}
