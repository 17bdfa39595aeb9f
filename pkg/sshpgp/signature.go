package sshpgp

import (
	"bytes"
	"math/big"

	"github.com/gregLibert/ledger-ssh/pkg/bits"
	"github.com/gregLibert/ledger-ssh/pkg/der"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/ssh"
)

// Ed25519SignatureSize is the length of a raw Ed25519 signature.
const Ed25519SignatureSize = 64

// Signature is either an EcSignature or an EdSignature.
type Signature interface {
	Curve() Curve
	// SSHSignature converts the signature to its SSH wire form.
	SSHSignature() (*ssh.Signature, error)
	isSignature()
}

// EcSignature holds r then s, each as a 2-byte big-endian length followed by
// the DER INTEGER content octets, untouched.
type EcSignature struct {
	Blob []byte
}

// EdSignature holds the 64 raw bytes returned by the device.
type EdSignature struct {
	Blob []byte
}

func (EcSignature) Curve() Curve { return CurveNistP256 }
func (EdSignature) Curve() Curve { return CurveEd25519 }

func (EcSignature) isSignature() {}
func (EdSignature) isSignature() {}

// RS splits the blob back into its two integer components.
func (s EcSignature) RS() (r, sv []byte, err error) {
	in := cryptobyte.String(s.Blob)
	var rs, ss cryptobyte.String
	if !in.ReadUint16LengthPrefixed(&rs) || !in.ReadUint16LengthPrefixed(&ss) || !in.Empty() {
		return nil, nil, formatError("ecdsa signature blob of %d bytes", len(s.Blob))
	}
	return []byte(rs), []byte(ss), nil
}

// SSHSignature re-encodes r and s as SSH mpints.
func (s EcSignature) SSHSignature() (*ssh.Signature, error) {
	r, sv, err := s.RS()
	if err != nil {
		return nil, err
	}

	blob := ssh.Marshal(struct {
		R *big.Int
		S *big.Int
	}{new(big.Int).SetBytes(r), new(big.Int).SetBytes(sv)})

	return &ssh.Signature{Format: ssh.KeyAlgoECDSA256, Blob: blob}, nil
}

// SSHSignature wraps the raw signature.
func (s EdSignature) SSHSignature() (*ssh.Signature, error) {
	if len(s.Blob) != Ed25519SignatureSize {
		return nil, formatError("ed25519 signature of %d bytes", len(s.Blob))
	}
	return &ssh.Signature{Format: ssh.KeyAlgoED25519, Blob: bytes.Clone(s.Blob)}, nil
}

// SignatureDecoder turns the payload of a signing reply into a Signature.
type SignatureDecoder struct {
	// FixOddParityTag enables correctOddParityTag on ECDSA envelopes.
	FixOddParityTag bool
}

// Decode dispatches on curve. data is never modified.
func (d SignatureDecoder) Decode(curve Curve, data []byte) (Signature, error) {
	switch curve {
	case CurveNistP256:
		return d.decodeEc(data)
	case CurveEd25519:
		return decodeEd(data)
	default:
		return nil, unsupportedCurve(curve)
	}
}

func (d SignatureDecoder) decodeEc(envelope []byte) (EcSignature, error) {
	if len(envelope) == 0 {
		return EcSignature{}, formatError("empty ecdsa signature envelope")
	}

	if d.FixOddParityTag {
		envelope = correctOddParityTag(envelope)
	}

	reader, err := der.NewReader(envelope)
	if err != nil {
		return EcSignature{}, formatError("ecdsa envelope: %v", err)
	}

	seq, err := reader.ReadSequence()
	if err != nil {
		return EcSignature{}, formatError("ecdsa envelope: %v", err)
	}

	r, err := seq.ReadInteger()
	if err != nil {
		return EcSignature{}, formatError("ecdsa r: %v", err)
	}
	s, err := seq.ReadInteger()
	if err != nil {
		return EcSignature{}, formatError("ecdsa s: %v", err)
	}
	if !seq.Empty() {
		return EcSignature{}, formatError("ecdsa envelope holds more than r and s")
	}

	var b cryptobyte.Builder
	for _, v := range [][]byte{r, s} {
		b.AddUint16LengthPrefixed(func(child *cryptobyte.Builder) {
			child.AddBytes(v)
		})
	}

	blob, err := b.Bytes()
	if err != nil {
		return EcSignature{}, formatError("ecdsa blob: %v", err)
	}
	return EcSignature{Blob: blob}, nil
}

// correctOddParityTag undoes the firmware quirk that raises bit 1 of the
// SEQUENCE tag for odd-parity signatures. The fix is applied to a copy.
func correctOddParityTag(envelope []byte) []byte {
	if !bits.IsSet(envelope[0], 1) {
		return envelope
	}
	fixed := bytes.Clone(envelope)
	fixed[0] = bits.Clear(fixed[0], 1)
	return fixed
}

func decodeEd(data []byte) (EdSignature, error) {
	if len(data) != Ed25519SignatureSize {
		return EdSignature{}, formatError("ed25519 signature of %d bytes, want %d", len(data), Ed25519SignatureSize)
	}
	return EdSignature{Blob: bytes.Clone(data)}, nil
}
