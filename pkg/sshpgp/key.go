package sshpgp

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"slices"

	"github.com/gregLibert/ledger-ssh/pkg/bits"
	"github.com/gregLibert/ledger-ssh/pkg/der"
	"golang.org/x/crypto/ssh"
)

// CoordinateSize is the length of one Ed25519 affine coordinate in the reply.
const CoordinateSize = 32

// PublicKey is either an EcKey or an EdKey.
type PublicKey interface {
	Curve() Curve
	// SSHPublicKey converts the key to an SSH public key.
	SSHPublicKey() (ssh.PublicKey, error)
	isPublicKey()
}

// EcKey holds the curve point exactly as the device encodes it
// (04 || X || Y for an uncompressed P-256 point).
type EcKey struct {
	Point []byte
}

// EdKey holds the 32-byte compressed Ed25519 public key.
type EdKey struct {
	Compressed [CoordinateSize]byte
}

func (EcKey) Curve() Curve { return CurveNistP256 }
func (EdKey) Curve() Curve { return CurveEd25519 }

func (EcKey) isPublicKey() {}
func (EdKey) isPublicKey() {}

// SSHPublicKey builds an ecdsa-sha2-nistp256 key.
func (k EcKey) SSHPublicKey() (ssh.PublicKey, error) {
	x, y := elliptic.Unmarshal(elliptic.P256(), k.Point)
	if x == nil {
		return nil, formatError("point of %d bytes is not on P-256", len(k.Point))
	}
	return ssh.NewPublicKey(&ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y})
}

// SSHPublicKey builds an ssh-ed25519 key.
func (k EdKey) SSHPublicKey() (ssh.PublicKey, error) {
	return ssh.NewPublicKey(ed25519.PublicKey(bytes.Clone(k.Compressed[:])))
}

// DecodePublicKey turns the payload of a GET PUBLIC KEY reply into a PublicKey.
func DecodePublicKey(curve Curve, data []byte) (PublicKey, error) {
	switch curve {
	case CurveNistP256:
		return decodeEcKey(data)
	case CurveEd25519:
		return decodeEdKey(data)
	default:
		return nil, unsupportedCurve(curve)
	}
}

// readLengthPrefixed reads a 1-byte length then that many bytes.
func readLengthPrefixed(data []byte) ([]byte, error) {
	if len(data) < 1 {
		return nil, formatError("missing length byte")
	}
	n := int(data[0])
	if len(data)-1 < n {
		return nil, formatError("length %d exceeds %d available bytes", n, len(data)-1)
	}
	return data[1 : 1+n], nil
}

func decodeEcKey(data []byte) (EcKey, error) {
	point, err := readLengthPrefixed(data)
	if err != nil {
		return EcKey{}, err
	}
	return EcKey{Point: bytes.Clone(point)}, nil
}

// decodeEdKey repacks the (X, Y) envelope into the compressed form: Y in
// little-endian order with the parity of X in the top bit.
func decodeEdKey(data []byte) (EdKey, error) {
	envelope, err := readLengthPrefixed(data)
	if err != nil {
		return EdKey{}, err
	}

	if len(envelope) < 1 || envelope[0] != der.OctetStringTag {
		return EdKey{}, formatError("ed25519 envelope does not start with OCTET STRING tag")
	}
	coords := envelope[1:]
	if len(coords) < 2*CoordinateSize {
		return EdKey{}, formatError("ed25519 envelope holds %d coordinate bytes, want %d", len(coords), 2*CoordinateSize)
	}

	x := coords[:CoordinateSize]
	y := coords[CoordinateSize : 2*CoordinateSize]

	var key EdKey
	copy(key.Compressed[:], y)

	if bits.IsSet(x[CoordinateSize-1], 1) {
		key.Compressed[0] = bits.Set(key.Compressed[0], 8)
	}
	slices.Reverse(key.Compressed[:])

	return key, nil
}
