// Package der is a minimal ASN.1 DER reader covering exactly what signature
// envelopes need: SEQUENCE headers and INTEGER values. Tag/length decoding is
// delegated to BER-TLV, of which DER is a strict subset.
package der

import (
	"errors"
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"
)

// Universal tags understood by the reader.
const (
	TagInteger     = "02"
	TagOctetString = "04"
	TagSequence    = "30"

	// OctetStringTag is the raw universal OCTET STRING tag byte.
	OctetStringTag byte = 0x04
)

// ErrFormat is returned for truncated buffers and unexpected tags.
var ErrFormat = errors.New("der: malformed encoding")

// Reader walks the elements of one DER level in order.
type Reader struct {
	items []bertlv.TLV
	pos   int
}

// NewReader validates the headers of data and decodes its top level elements.
func NewReader(data []byte) (*Reader, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrFormat)
	}

	if err := checkEncoding(data); err != nil {
		return nil, err
	}

	items, err := bertlv.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return &Reader{items: items}, nil
}

// Empty reports whether every element of this level was consumed.
func (r *Reader) Empty() bool {
	return r.pos >= len(r.items)
}

// ReadSequence consumes a SEQUENCE and returns a reader scoped to its contents.
func (r *Reader) ReadSequence() (*Reader, error) {
	item, err := r.next(TagSequence)
	if err != nil {
		return nil, err
	}
	return &Reader{items: item.TLVs}, nil
}

// ReadInteger consumes an INTEGER and returns its content octets verbatim:
// a big-endian two's complement magnitude, including any 00 sign pad.
func (r *Reader) ReadInteger() ([]byte, error) {
	item, err := r.next(TagInteger)
	if err != nil {
		return nil, err
	}
	if len(item.Value) == 0 {
		return nil, fmt.Errorf("%w: zero-length INTEGER", ErrFormat)
	}
	return item.Value, nil
}

func (r *Reader) next(tag string) (bertlv.TLV, error) {
	if r.Empty() {
		return bertlv.TLV{}, fmt.Errorf("%w: expected tag %s, got end of data", ErrFormat, tag)
	}

	item := r.items[r.pos]
	if !strings.EqualFold(item.Tag, tag) {
		return bertlv.TLV{}, fmt.Errorf("%w: expected tag %s, got %s", ErrFormat, tag, strings.ToUpper(item.Tag))
	}

	r.pos++
	return item, nil
}
