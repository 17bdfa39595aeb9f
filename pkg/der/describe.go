package der

import (
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"
)

var tagNames = map[string]string{
	TagInteger:     "INTEGER",
	TagOctetString: "OCTET STRING",
	TagSequence:    "SEQUENCE",
	"31":           "SET",
}

// Describe renders data as an indented element tree, one element per line.
// Input that does not decode is rendered as hex with the decoding error.
func Describe(data []byte) string {
	if err := checkEncoding(data); err != nil {
		return fmt.Sprintf("%X (undecodable: %v)", data, err)
	}
	items, err := bertlv.Decode(data)
	if err != nil {
		return fmt.Sprintf("%X (undecodable: %v)", data, err)
	}

	var sb strings.Builder
	describe(&sb, items, 0)
	return sb.String()
}

func describe(sb *strings.Builder, items []bertlv.TLV, depth int) {
	indent := strings.Repeat("  ", depth)

	for _, item := range items {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}

		tag := strings.ToUpper(item.Tag)
		label := tag
		if name, ok := tagNames[tag]; ok {
			label = tag + " " + name
		}

		if len(item.TLVs) > 0 {
			fmt.Fprintf(sb, "%s- %s", indent, label)
			describe(sb, item.TLVs, depth+1)
			continue
		}
		fmt.Fprintf(sb, "%s- %s: %X", indent, label, item.Value)
	}
}
