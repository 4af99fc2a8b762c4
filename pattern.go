package bytescan

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zhuweiyou/bytescan/internal/maskcmp"
)

// Mask values produced by the parser. A mask byte holds the bits to ignore.
const (
	MaskExact    byte = 0x00
	MaskLowWild  byte = 0x0F
	MaskHighWild byte = 0xF0
	MaskWild     byte = 0xFF
)

// StringToPattern converts a search string to an AOB (Array of Bytes) pattern.
// Wildcard characters (?) become "??" and the pattern is padded with "??" up
// to minLength bytes.
func StringToPattern(searchStr string, minLength int) string {
	if searchStr == "" {
		return ""
	}

	n := max(len(searchStr), minLength)
	tokens := make([]string, n)
	for i := range tokens {
		switch {
		case i >= len(searchStr), searchStr[i] == '?':
			tokens[i] = "??"
		default:
			tokens[i] = fmt.Sprintf("%02X", searchStr[i])
		}
	}
	return strings.Join(tokens, " ")
}

// Pattern is a parsed byte pattern. Bytes and Mask always have the same
// length; Mask[i] holds the bits of Bytes[i] that are ignored when comparing.
type Pattern struct {
	Bytes []byte
	Mask  []byte
}

// Len returns the pattern length in bytes.
func (p Pattern) Len() int {
	return len(p.Bytes)
}

// MatchAt reports whether the pattern matches the start of data.
func (p Pattern) MatchAt(data []byte) bool {
	if len(data) < len(p.Bytes) {
		return false
	}
	return maskcmp.Equal(data, p.Bytes, p.Mask)
}

// FoldCase returns a copy of p where ASCII letters match either case.
func (p Pattern) FoldCase() Pattern {
	out := Pattern{
		Bytes: append([]byte(nil), p.Bytes...),
		Mask:  append([]byte(nil), p.Mask...),
	}
	for i, b := range out.Bytes {
		if out.Mask[i] != MaskExact {
			continue
		}
		if lower := b | 0x20; lower >= 'a' && lower <= 'z' {
			out.Mask[i] = 0x20
		}
	}
	return out
}

// String renders the pattern back to AOB text.
func (p Pattern) String() string {
	tokens := make([]string, len(p.Bytes))
	for i, b := range p.Bytes {
		hexByte := fmt.Sprintf("%02X", b)
		switch p.Mask[i] {
		case MaskWild:
			tokens[i] = "??"
		case MaskHighWild:
			tokens[i] = "?" + hexByte[1:]
		case MaskLowWild:
			tokens[i] = hexByte[:1] + "?"
		default:
			tokens[i] = hexByte
		}
	}
	return strings.Join(tokens, " ")
}

// ParsePattern parses an AOB pattern such as "48 8B ?? ?5 E?".
//
// Tokens are separated by whitespace. "HH" is a literal byte, "?" and "??"
// match any byte, "?H" ignores the high nibble and "H?" the low nibble. On a
// bad token parsing stops and the bytes parsed so far are returned together
// with a *ParseError. An empty string is a valid, empty pattern.
func ParsePattern(pattern string) (Pattern, error) {
	parts := strings.Fields(pattern)
	p := Pattern{
		Bytes: make([]byte, 0, len(parts)),
		Mask:  make([]byte, 0, len(parts)),
	}

	for i, part := range parts {
		b, mask, reason := parseToken(part)
		if reason != "" {
			return p, &ParseError{Token: part, Index: i, Reason: reason}
		}
		p.Bytes = append(p.Bytes, b)
		p.Mask = append(p.Mask, mask)
	}
	return p, nil
}

func parseToken(tok string) (b, mask byte, reason string) {
	if tok == "?" || tok == "??" {
		return 0x00, MaskWild, ""
	}
	if len(tok) != 2 {
		return 0, 0, "want two characters"
	}

	digits, mask := tok, MaskExact
	switch {
	case tok[0] == '?':
		digits, mask = "0"+tok[1:], MaskHighWild
	case tok[1] == '?':
		digits, mask = tok[:1]+"0", MaskLowWild
	}

	decoded, err := hex.DecodeString(digits)
	if err != nil || len(decoded) != 1 {
		return 0, 0, "invalid hex digit"
	}
	return decoded[0], mask, ""
}

// ParseRawPattern builds a pattern from raw bytes and a byte-granular mask
// where 'x' compares the byte and '?' ignores it.
func ParseRawPattern(raw []byte, mask string) (Pattern, error) {
	if len(raw) != len(mask) {
		return Pattern{}, fmt.Errorf("%w: mask has %d bytes, pattern has %d", ErrMaskLength, len(mask), len(raw))
	}

	p := Pattern{
		Bytes: make([]byte, 0, len(raw)),
		Mask:  make([]byte, 0, len(raw)),
	}
	for i := 0; i < len(mask); i++ {
		switch mask[i] {
		case 'x', 'X':
			p.Bytes = append(p.Bytes, raw[i])
			p.Mask = append(p.Mask, MaskExact)
		case '?':
			p.Bytes = append(p.Bytes, 0x00)
			p.Mask = append(p.Mask, MaskWild)
		default:
			return p, &ParseError{Token: mask[i : i+1], Index: i, Reason: "mask accepts only 'x' and '?'"}
		}
	}
	return p, nil
}

// ValidPattern reports whether pattern parses and holds at least one byte.
func ValidPattern(pattern string) bool {
	p, err := ParsePattern(pattern)
	return err == nil && p.Len() > 0
}

// CompareWithMask reports whether a and b are equal on the first len(mask)
// bytes, ignoring the bits set in mask.
func CompareWithMask(a, b, mask []byte) bool {
	return maskcmp.Equal(a, b, mask)
}
