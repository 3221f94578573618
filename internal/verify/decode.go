package verify

import (
	"strings"
	"unicode/utf8"
)

// DecodeLossy converts raw bytes to text, substituting U+FFFD for each
// maximal invalid sequence instead of failing. A truncated multi-byte
// prefix collapses to a single replacement rune. Decoding never errors;
// it may change the byte length of the text.
func DecodeLossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			sb.WriteRune(utf8.RuneError)
			b = b[invalidLen(b):]
			continue
		}
		sb.Write(b[:size])
		b = b[size:]
	}
	return sb.String()
}

// invalidLen reports how many leading bytes form one maximal invalid
// sequence: the longest prefix of a well-formed multi-byte encoding,
// or a single stray byte.
func invalidLen(b []byte) int {
	lead := b[0]

	var cont int    // continuation bytes the lead demands
	var lo, hi byte // accepted range for the second byte
	switch {
	case lead >= 0xC2 && lead <= 0xDF:
		cont, lo, hi = 1, 0x80, 0xBF
	case lead == 0xE0:
		cont, lo, hi = 2, 0xA0, 0xBF
	case lead >= 0xE1 && lead <= 0xEC, lead == 0xEE, lead == 0xEF:
		cont, lo, hi = 2, 0x80, 0xBF
	case lead == 0xED:
		cont, lo, hi = 2, 0x80, 0x9F
	case lead == 0xF0:
		cont, lo, hi = 3, 0x90, 0xBF
	case lead >= 0xF1 && lead <= 0xF3:
		cont, lo, hi = 3, 0x80, 0xBF
	case lead == 0xF4:
		cont, lo, hi = 3, 0x80, 0x8F
	default:
		// Stray continuation byte or a lead that can start nothing
		return 1
	}

	n := 1
	if n < len(b) && b[n] >= lo && b[n] <= hi {
		n++
		for n <= cont && n < len(b) && b[n] >= 0x80 && b[n] <= 0xBF {
			n++
		}
	}
	return n
}
