// Package bits holds the small bit manipulations shared by the protocol codecs.
// Byte positions are numbered 1 to 8 (ISO 7816 style), word positions 1 to 32.
package bits

// Bit returns a byte with only the n-th bit set (1 to 8).
func Bit(n uint) byte {
	if n < 1 || n > 8 {
		return 0
	}
	return 1 << (n - 1)
}

// IsSet checks if the n-th bit is set (1 to 8).
func IsSet(b byte, n uint) bool {
	return b&Bit(n) != 0
}

// Set returns b with bit n raised.
func Set(b byte, n uint) byte {
	return b | Bit(n)
}

// Clear returns b with bit n lowered.
func Clear(b byte, n uint) byte {
	return b &^ Bit(n)
}

// Bit32 returns a word with only the n-th bit set (1 to 32).
func Bit32(n uint) uint32 {
	if n < 1 || n > 32 {
		return 0
	}
	return 1 << (n - 1)
}

// IsSet32 checks if the n-th bit of a word is set (1 to 32).
func IsSet32(w uint32, n uint) bool {
	return w&Bit32(n) != 0
}

// Set32 returns w with bit n raised.
func Set32(w uint32, n uint) uint32 {
	return w | Bit32(n)
}
