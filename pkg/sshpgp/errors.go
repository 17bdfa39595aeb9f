package sshpgp

import (
	"fmt"

	"github.com/gregLibert/ledger-ssh/pkg/apdu"
	"github.com/pkg/errors"
)

var (
	// ErrFormat covers malformed local input and malformed device replies.
	ErrFormat = errors.New("sshpgp: invalid format")
	// ErrUnsupportedCurve is returned for a curve selector outside the supported set.
	ErrUnsupportedCurve = errors.New("sshpgp: unsupported curve")

	// ErrCancelled means the user rejected the operation on the device.
	ErrCancelled = errors.New("sshpgp: operation cancelled by user")
	// ErrAppNotRunning means the SSH/PGP applet is not open on the device.
	ErrAppNotRunning = errors.New("sshpgp: ssh app is not running")
	// ErrDeviceLocked means the device is locked.
	ErrDeviceLocked = errors.New("sshpgp: device is locked")
	// ErrDevice is the parent of every DeviceError.
	ErrDevice = errors.New("sshpgp: device returned bad status word")
)

// DeviceError carries a status word that has no dedicated meaning.
type DeviceError struct {
	Status apdu.StatusWord
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%v: %s", ErrDevice, e.Status.Verbose())
}

// Unwrap lets errors.Is(err, ErrDevice) match.
func (e *DeviceError) Unwrap() error {
	return ErrDevice
}

// Outcome is the classification of a status word.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeCancelled
	OutcomeAppNotRunning
	OutcomeDeviceLocked
	OutcomeDeviceError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeAppNotRunning:
		return "app-not-running"
	case OutcomeDeviceLocked:
		return "device-locked"
	default:
		return "device-error"
	}
}

// Classify maps every status word to an outcome.
func Classify(sw apdu.StatusWord) Outcome {
	switch sw {
	case apdu.SW_NO_ERROR:
		return OutcomeOK
	case apdu.SW_ERR_DENIED_BY_USER:
		return OutcomeCancelled
	case apdu.SW_ERR_APP_NOT_RUNNING:
		return OutcomeAppNotRunning
	case apdu.SW_DEVICE_LOCKED:
		return OutcomeDeviceLocked
	default:
		return OutcomeDeviceError
	}
}

// StatusError returns nil for a successful status and the typed error otherwise.
func StatusError(sw apdu.StatusWord) error {
	switch Classify(sw) {
	case OutcomeOK:
		return nil
	case OutcomeCancelled:
		return errors.WithStack(ErrCancelled)
	case OutcomeAppNotRunning:
		return errors.WithStack(ErrAppNotRunning)
	case OutcomeDeviceLocked:
		return errors.WithStack(ErrDeviceLocked)
	default:
		return errors.WithStack(&DeviceError{Status: sw})
	}
}

func unsupportedCurve(curve Curve) error {
	return errors.Wrapf(ErrUnsupportedCurve, "curve %s", curve)
}

func formatError(format string, args ...any) error {
	return errors.Wrapf(ErrFormat, format, args...)
}
