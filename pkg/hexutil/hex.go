// Package hexutil builds byte fixtures from readable hex and renders frames for logs.
package hexutil

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Hex constructs a byte slice from a series of hex strings.
// It panics on malformed input, so it is meant for literals only.
func Hex(parts ...string) []byte {
	fullHex := strings.Join(parts, "")
	// Clean up spaces to allow format like "80 04 00 01"
	cleanHex := strings.ReplaceAll(fullHex, " ", "")

	data, err := hex.DecodeString(cleanHex)
	if err != nil {
		panic(fmt.Sprintf("invalid input '%s': %v", cleanHex, err))
	}
	return data
}

// Dump renders data as upper-case hex, eliding the middle of long buffers.
func Dump(data []byte, max int) string {
	if max <= 0 || len(data) <= max {
		return strings.ToUpper(hex.EncodeToString(data))
	}
	head := strings.ToUpper(hex.EncodeToString(data[:max/2]))
	tail := strings.ToUpper(hex.EncodeToString(data[len(data)-max/2:]))
	return fmt.Sprintf("%s...%s (%d bytes)", head, tail, len(data))
}
