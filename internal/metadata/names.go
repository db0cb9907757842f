package metadata

import (
	"strings"
	"unicode"
)

// Snake converts an identifier to lower-case, underscore-separated words.
// "FullName" -> "full_name", "HTTPCode" -> "http_code", "user-id" -> "user_id",
// "address_line1" -> "address_line_1". Letters and digits are separate words.
func Snake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	sep := false
	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			sep = b.Len() > 0
			continue
		}
		if !sep && b.Len() > 0 && boundary(runes, i) {
			sep = true
		}
		if sep {
			b.WriteByte('_')
			sep = false
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// boundary reports whether a new word starts at runes[i], given that
// runes[i-1] was written.
func boundary(runes []rune, i int) bool {
	prev, r := runes[i-1], runes[i]
	switch {
	case unicode.IsDigit(r):
		return unicode.IsLetter(prev)
	case unicode.IsDigit(prev):
		return unicode.IsLetter(r)
	case unicode.IsUpper(r) && unicode.IsLower(prev):
		return true
	case unicode.IsUpper(r) && unicode.IsUpper(prev):
		return i+1 < len(runes) && unicode.IsLower(runes[i+1])
	}
	return false
}
