package apdu

import "fmt"

// StatusWord represents the two-byte status (SW1-SW2) that ends every reply.
type StatusWord uint16

// NewStatusWord creates a StatusWord instance from two separate bytes.
func NewStatusWord(sw1, sw2 byte) StatusWord {
	return StatusWord(uint16(sw1)<<8 | uint16(sw2))
}

// SW1 returns the first byte (high byte) of the status word.
func (sw StatusWord) SW1() byte {
	return byte(sw >> 8)
}

// SW2 returns the second byte (low byte) of the status word.
func (sw StatusWord) SW2() byte {
	return byte(sw)
}

// IsSuccess returns true if the command was processed successfully (9000).
func (sw StatusWord) IsSuccess() bool {
	return sw == SW_NO_ERROR
}

// Status words emitted by the signing applet and the device firmware.
const (
	SW_NO_ERROR            StatusWord = 0x9000
	SW_DEVICE_LOCKED       StatusWord = 0x5515
	SW_ERR_WRONG_LENGTH    StatusWord = 0x6700
	SW_ERR_SECURITY_STATUS StatusWord = 0x6982
	SW_ERR_DENIED_BY_USER  StatusWord = 0x6985
	SW_ERR_INCORRECT_DATA  StatusWord = 0x6A80
	SW_ERR_WRONG_P1P2      StatusWord = 0x6B00
	SW_ERR_INS_INVALID     StatusWord = 0x6D00
	SW_ERR_CLA_INVALID     StatusWord = 0x6E00
	SW_ERR_APP_NOT_RUNNING StatusWord = 0x6E01
	SW_ERR_UNKNOWN         StatusWord = 0x6F00
)

var statusNames = map[StatusWord]string{
	SW_NO_ERROR:            "SW_NO_ERROR",
	SW_DEVICE_LOCKED:       "SW_DEVICE_LOCKED",
	SW_ERR_WRONG_LENGTH:    "SW_ERR_WRONG_LENGTH",
	SW_ERR_SECURITY_STATUS: "SW_ERR_SECURITY_STATUS",
	SW_ERR_DENIED_BY_USER:  "SW_ERR_DENIED_BY_USER",
	SW_ERR_INCORRECT_DATA:  "SW_ERR_INCORRECT_DATA",
	SW_ERR_WRONG_P1P2:      "SW_ERR_WRONG_P1P2",
	SW_ERR_INS_INVALID:     "SW_ERR_INS_INVALID",
	SW_ERR_CLA_INVALID:     "SW_ERR_CLA_INVALID",
	SW_ERR_APP_NOT_RUNNING: "SW_ERR_APP_NOT_RUNNING",
	SW_ERR_UNKNOWN:         "SW_ERR_UNKNOWN",
}

func (sw StatusWord) String() string {
	if name, ok := statusNames[sw]; ok {
		return name
	}
	return fmt.Sprintf("StatusWord(0x%04X)", uint16(sw))
}

// Verbose returns a human-readable description of the status word.
func (sw StatusWord) Verbose() string {
	if name, ok := statusNames[sw]; ok {
		return fmt.Sprintf("[%04X] %s", uint16(sw), name)
	}
	return fmt.Sprintf("[%04X] %s", uint16(sw), sw.genericCategoryDescription())
}

// genericCategoryDescription provides a fallback description based on SW1.
func (sw StatusWord) genericCategoryDescription() string {
	switch sw.SW1() {
	case 0x55:
		return "Device Error: Locked"
	case 0x64, 0x65:
		return "Execution Error"
	case 0x67:
		return "Checking Error: Wrong length"
	case 0x69:
		return "Checking Error: Command not allowed"
	case 0x6A, 0x6B:
		return "Checking Error: Wrong parameters"
	case 0x6D, 0x6E:
		return "Checking Error: Instruction or class not supported"
	default:
		return "Unknown Status"
	}
}
