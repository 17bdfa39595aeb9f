/*
Package apdu implements the command/response framing used to talk to a
hardware signing applet over an opaque request/response transport.

# Fundamentals

The communication with the device is strictly synchronous:
 1. The Host sends a Frame (CLA, INS, P1, P2 header followed by a payload).
 2. The Device processes it and returns a Reply (optional payload + 2-byte status word).

Only one exchange is ever in flight per transport. Logical operations whose
payload exceeds the per-frame data limit are split into ordered chunks (see
Split and BuildChunkedFrames); each chunk is sent only once the previous
reply has been accepted.

# Wire format

A Frame serializes as header followed by payload, without any length field:

	CLA(1) | INS(1) | P1(1) | P2(1) | payload

Transports that need the ISO 7816 Lc field (PC/SC readers, the Ledger HID
channel) add it with EncodeCommand.

# Status Words

Every reply ends with a 2-byte Status Word (SW).
  - 0x9000: Success (OK).
  - Other: error conditions, whose meaning is application specific.

# Usage Example

	client := apdu.NewClient(transport)
	frames, err := apdu.BuildChunkedFrames(header, payload, apdu.MaxShortLc, markers)
	if err != nil {
	    return err
	}
	trace, err := client.SendAll(ctx, frames, func(sw apdu.StatusWord) error {
	    if sw != apdu.SW_NO_ERROR {
	        return fmt.Errorf("device said %s", sw.Verbose())
	    }
	    return nil
	})
	if err != nil {
	    return err
	}
	fmt.Println(trace.Describe())
*/
package apdu
