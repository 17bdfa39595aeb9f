package sshpgp

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"slices"
	"testing"

	"github.com/gregLibert/ledger-ssh/pkg/hexutil"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// edReply builds a GET PUBLIC KEY payload for Ed25519: len | 04 | X | Y.
func edReply(x, y []byte) []byte {
	envelope := append([]byte{0x04}, x...)
	envelope = append(envelope, y...)
	return append([]byte{byte(len(envelope))}, envelope...)
}

func TestDecodePublicKey_EdDecompression(t *testing.T) {
	x := make([]byte, 32)
	x[31] = 0x03
	y := make([]byte, 32)
	y[0] = 0x10

	key, err := DecodePublicKey(CurveEd25519, edReply(x, y))
	if err != nil {
		t.Fatalf("DecodePublicKey failed: %v", err)
	}

	ed, ok := key.(EdKey)
	if !ok {
		t.Fatalf("got %T, want EdKey", key)
	}

	want := make([]byte, 32)
	want[31] = 0x90
	if !bytes.Equal(ed.Compressed[:], want) {
		t.Errorf("Compressed = %X; want %X", ed.Compressed, want)
	}
	if y[0] != 0x10 {
		t.Error("input Y was modified")
	}
}

func TestDecodePublicKey_EdEvenParity(t *testing.T) {
	x := make([]byte, 32)
	x[31] = 0x02
	y := make([]byte, 32)
	y[0] = 0x10
	y[31] = 0xAB

	key, err := DecodePublicKey(CurveEd25519, edReply(x, y))
	if err != nil {
		t.Fatalf("DecodePublicKey failed: %v", err)
	}

	want := slices.Clone(y)
	slices.Reverse(want)
	if got := key.(EdKey).Compressed; !bytes.Equal(got[:], want) {
		t.Errorf("Compressed = %X; want %X", got, want)
	}
}

func TestDecodePublicKey_EdRealKey(t *testing.T) {
	pub := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{0x42}, ed25519.SeedSize)).Public().(ed25519.PublicKey)

	// Device order: Y big-endian without the sign bit, sign carried by X parity.
	y := slices.Clone([]byte(pub))
	sign := y[31] >> 7
	y[31] &= 0x7F
	slices.Reverse(y)
	x := make([]byte, 32)
	x[31] = sign

	key, err := DecodePublicKey(CurveEd25519, edReply(x, y))
	if err != nil {
		t.Fatalf("DecodePublicKey failed: %v", err)
	}

	sshKey, err := key.SSHPublicKey()
	if err != nil {
		t.Fatalf("SSHPublicKey failed: %v", err)
	}
	want, _ := ssh.NewPublicKey(pub)
	if !bytes.Equal(sshKey.Marshal(), want.Marshal()) {
		t.Errorf("ssh key mismatch:\n got  %s\n want %s", ssh.MarshalAuthorizedKey(sshKey), ssh.MarshalAuthorizedKey(want))
	}
}

func TestDecodePublicKey_Ec(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	ecdhKey, err := priv.PublicKey.ECDH()
	if err != nil {
		t.Fatalf("ECDH failed: %v", err)
	}
	point := ecdhKey.Bytes()

	reply := append([]byte{byte(len(point))}, point...)
	reply = append(reply, 0xEE) // trailing byte ignored

	key, err := DecodePublicKey(CurveNistP256, reply)
	if err != nil {
		t.Fatalf("DecodePublicKey failed: %v", err)
	}

	ec, ok := key.(EcKey)
	if !ok {
		t.Fatalf("got %T, want EcKey", key)
	}
	if !bytes.Equal(ec.Point, point) {
		t.Errorf("Point = %X; want %X", ec.Point, point)
	}

	sshKey, err := ec.SSHPublicKey()
	if err != nil {
		t.Fatalf("SSHPublicKey failed: %v", err)
	}
	want, _ := ssh.NewPublicKey(&priv.PublicKey)
	if !bytes.Equal(sshKey.Marshal(), want.Marshal()) {
		t.Error("ssh key mismatch")
	}
	if sshKey.Type() != ssh.KeyAlgoECDSA256 {
		t.Errorf("Type() = %s", sshKey.Type())
	}
}

func TestDecodePublicKey_Errors(t *testing.T) {
	validCoords := make([]byte, 64)

	tests := []struct {
		name  string
		curve Curve
		data  []byte
		want  error
	}{
		{"EC empty", CurveNistP256, nil, ErrFormat},
		{"EC truncated point", CurveNistP256, hexutil.Hex("41 04 0102"), ErrFormat},
		{"Ed empty", CurveEd25519, nil, ErrFormat},
		{"Ed wrong tag", CurveEd25519, append([]byte{65, 0x03}, validCoords...), ErrFormat},
		{"Ed short envelope", CurveEd25519, append([]byte{64, 0x04}, validCoords[:63]...), ErrFormat},
		{"Ed truncated", CurveEd25519, hexutil.Hex("41 04 00"), ErrFormat},
		{"Unsupported curve", Curve(0), hexutil.Hex("01 04"), ErrUnsupportedCurve},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePublicKey(tt.curve, tt.data); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEcKey_SSHPublicKey_Invalid(t *testing.T) {
	if _, err := (EcKey{Point: hexutil.Hex("04 0102")}).SSHPublicKey(); !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
}
