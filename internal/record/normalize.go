package record

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText converts a raw field or annotation value into NFC-normalized
// text. Byte slices are decoded as UTF-8 when valid and as ISO-8859-1
// otherwise. Since NFC is idempotent, text that was already decoded passes
// through unchanged.
func NormalizeText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return norm.NFC.String(t)
	case []byte:
		return norm.NFC.String(decodeBytes(t))
	case *string:
		if t == nil {
			return ""
		}
		return norm.NFC.String(*t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return norm.NFC.String(t.String())
	default:
		return norm.NFC.String(fmt.Sprint(t))
	}
}

func decodeBytes(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		// ISO-8859-1 maps every byte, so this is unreachable in practice.
		return string(b)
	}
	return string(s)
}
