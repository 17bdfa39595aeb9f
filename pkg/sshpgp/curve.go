package sshpgp

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Curve selects the key family used by an operation.
type Curve byte

const (
	// CurveNistP256 is ECDSA over NIST P-256 (prime256v1).
	CurveNistP256 Curve = iota + 1
	// CurveEd25519 is EdDSA over Curve25519.
	CurveEd25519
)

// ParseCurve accepts the usual spellings of the two supported curves.
func ParseCurve(s string) (Curve, error) {
	switch strings.ToLower(s) {
	case "p256", "p-256", "nistp256", "prime256v1", "secp256r1":
		return CurveNistP256, nil
	case "ed25519", "c25519", "curve25519":
		return CurveEd25519, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedCurve, "%q", s)
	}
}

func (c Curve) String() string {
	switch c {
	case CurveNistP256:
		return "nistp256"
	case CurveEd25519:
		return "ed25519"
	default:
		return fmt.Sprintf("Curve(%d)", byte(c))
	}
}
