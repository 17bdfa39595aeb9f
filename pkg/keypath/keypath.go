// Package keypath parses BIP32 derivation paths and encodes them in the
// layout the signing applet expects: one count byte followed by each index
// as a big-endian 32-bit word.
//
// Grammar:
//
//	path     := ["m"] ["/"] segment ("/" segment)*
//	segment  := digits [marker]
//	marker   := "h" | "'"
//
// A hardened segment carries bit 32 of its index. The empty path (after
// stripping "m" and one leading "/") is the root and encodes to a single
// zero count byte.
package keypath

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gregLibert/ledger-ssh/pkg/bits"
)

const (
	master    = "m"
	delimiter = "/"

	// HardenedOffset is the flag OR-ed into hardened indices.
	HardenedOffset uint32 = 0x80000000

	// MaxDepth is the largest number of segments the count byte can announce.
	MaxDepth = 255
)

// ErrFormat is returned for any path that does not follow the grammar.
var ErrFormat = errors.New("keypath: invalid format")

// Path is an ordered list of derivation indices.
type Path []uint32

// Parse converts a textual path into its indices.
func Parse(s string) (Path, error) {
	s = strings.TrimPrefix(s, master)
	s = strings.TrimPrefix(s, delimiter)

	if s == "" {
		return Path{}, nil
	}

	segments := strings.Split(s, delimiter)
	if len(segments) > MaxDepth {
		return nil, fmt.Errorf("%w: %d segments exceed depth %d", ErrFormat, len(segments), MaxDepth)
	}

	path := make(Path, 0, len(segments))
	for i, segment := range segments {
		index, err := parseSegment(segment)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %d %q: %v", ErrFormat, i, segment, err)
		}
		path = append(path, index)
	}

	return path, nil
}

func parseSegment(segment string) (uint32, error) {
	if segment == "" {
		return 0, errors.New("empty segment")
	}

	hardened := false
	if last := segment[len(segment)-1]; last == 'h' || last == '\'' {
		hardened = true
		segment = segment[:len(segment)-1]
	}

	value, err := strconv.ParseUint(segment, 10, 32)
	if err != nil {
		return 0, errors.New("not an unsigned 32-bit decimal")
	}

	index := uint32(value)
	if !hardened {
		return index, nil
	}

	if index >= HardenedOffset {
		return 0, fmt.Errorf("hardened index %d overflows", index)
	}
	return bits.Set32(index, 32), nil
}

// Bytes encodes the path as count byte + big-endian words.
// The count is derived from the encoded word length, never tracked apart.
func (p Path) Bytes() []byte {
	words := make([]byte, 0, 4*len(p))
	for _, index := range p {
		words = binary.BigEndian.AppendUint32(words, index)
	}

	out := make([]byte, 0, 1+len(words))
	out = append(out, byte(len(words)/4))
	return append(out, words...)
}

// String renders the path with "'" on hardened segments, e.g. m/44'/535'/0'/0/0.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString(master)
	for _, index := range p {
		sb.WriteString(delimiter)
		if bits.IsSet32(index, 32) {
			sb.WriteString(strconv.FormatUint(uint64(index&^HardenedOffset), 10))
			sb.WriteByte('\'')
			continue
		}
		sb.WriteString(strconv.FormatUint(uint64(index), 10))
	}
	return sb.String()
}

// Encode parses s and returns its wire encoding.
func Encode(s string) ([]byte, error) {
	path, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return path.Bytes(), nil
}
