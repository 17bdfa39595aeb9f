package der

import "fmt"

// maxLengthOctets bounds the long form length. Four octets cover any buffer a
// device reply can hold.
const maxLengthOctets = 4

// checkEncoding walks every tag and length header of data, descending into
// constructed elements, before the buffer is handed to bertlv. bertlv accepts
// EMV encodings (00 filler bytes, indefinite lengths) that are not DER, and
// does not bound long form lengths.
func checkEncoding(data []byte) error {
	for len(data) > 0 {
		tagLen, err := tagSize(data)
		if err != nil {
			return err
		}
		constructed := data[0]&0x20 != 0
		data = data[tagLen:]

		length, n, err := readLength(data)
		if err != nil {
			return err
		}
		data = data[n:]

		if constructed {
			if err := checkEncoding(data[:length]); err != nil {
				return err
			}
		}
		data = data[length:]
	}
	return nil
}

func tagSize(data []byte) (int, error) {
	if data[0] == 0x00 {
		return 0, fmt.Errorf("%w: zero tag byte", ErrFormat)
	}
	if data[0]&0x1F != 0x1F {
		return 1, nil
	}

	for i := 1; i < len(data); i++ {
		if data[i]&0x80 == 0 {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: incomplete tag", ErrFormat)
}

// readLength decodes a definite length and checks it against what is left of
// data after the length octets.
func readLength(data []byte) (length, size int, err error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("%w: missing length", ErrFormat)
	}

	first := data[0]
	switch {
	case first < 0x80:
		length, size = int(first), 1
	case first == 0x80:
		return 0, 0, fmt.Errorf("%w: indefinite length", ErrFormat)
	default:
		octets := int(first & 0x7F)
		if octets > maxLengthOctets {
			return 0, 0, fmt.Errorf("%w: %d length octets", ErrFormat, octets)
		}
		if len(data) < octets+1 {
			return 0, 0, fmt.Errorf("%w: truncated length", ErrFormat)
		}
		if data[1] == 0x00 {
			return 0, 0, fmt.Errorf("%w: non-minimal length", ErrFormat)
		}

		var v uint64
		for _, b := range data[1 : octets+1] {
			v = v<<8 | uint64(b)
		}
		if v < 0x80 {
			return 0, 0, fmt.Errorf("%w: non-minimal length", ErrFormat)
		}
		if v > uint64(len(data)-octets-1) {
			return 0, 0, fmt.Errorf("%w: length %d exceeds %d remaining bytes", ErrFormat, v, len(data)-octets-1)
		}
		return int(v), octets + 1, nil
	}

	if length > len(data)-size {
		return 0, 0, fmt.Errorf("%w: length %d exceeds %d remaining bytes", ErrFormat, length, len(data)-size)
	}
	return length, size, nil
}
