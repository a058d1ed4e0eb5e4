package order

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldReplacer = strings.NewReplacer("đ", "d", "Đ", "d")

// FoldText lowercases s and strips Vietnamese diacritics so that
// "Nguyễn Văn Đông" and "nguyen van dong" compare equal.
func FoldText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(foldReplacer.Replace(folded))
}

// digitsOnly keeps the decimal digits of s, used to compare phone numbers
// regardless of spacing or punctuation.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
