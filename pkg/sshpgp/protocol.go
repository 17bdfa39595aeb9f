package sshpgp

import "github.com/gregLibert/ledger-ssh/pkg/apdu"

// Protocol is the table of constants spoken by the applet. It is handed
// around by value; DefaultProtocol always returns a fresh copy.
type Protocol struct {
	// Class is the proprietary CLA byte of every command.
	Class byte

	InsGetPublicKey   byte
	InsSign           byte
	InsSignDirectHash byte

	P1GetPublicKey   byte
	P1SignDirectHash byte

	// SignChunks marks the position of each SignData chunk in P1.
	SignChunks apdu.ChunkMarkers

	// P2 curve selectors, shared by the three instructions.
	P2NistP256 byte
	P2Ed25519  byte

	// DataLimit is the largest payload of a single frame.
	DataLimit int

	// HashSize is the digest length accepted by SignDirectHash.
	HashSize int

	// FixOddParityTag clears bit 1 of the first byte of ECDSA signature
	// envelopes. The firmware folds the parity of the signature point into
	// the SEQUENCE tag (0x31 instead of 0x30).
	FixOddParityTag bool
}

// DefaultProtocol returns the constants of the SSH/PGP applet.
func DefaultProtocol() Protocol {
	return Protocol{
		Class: 0x80,

		InsGetPublicKey:   0x02,
		InsSign:           0x04,
		InsSignDirectHash: 0x08,

		P1GetPublicKey:   0x00,
		P1SignDirectHash: 0x00,

		SignChunks: apdu.ChunkMarkers{
			First:      0x00,
			Subsequent: 0x01,
			LastMask:   0x80,
		},

		P2NistP256: 0x01,
		P2Ed25519:  0x02,

		DataLimit: apdu.MaxShortLc,
		HashSize:  32,

		FixOddParityTag: true,
	}
}

// curveParam returns the P2 selector of curve.
func (p Protocol) curveParam(curve Curve) (byte, error) {
	switch curve {
	case CurveNistP256:
		return p.P2NistP256, nil
	case CurveEd25519:
		return p.P2Ed25519, nil
	default:
		return 0, unsupportedCurve(curve)
	}
}
