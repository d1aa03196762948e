package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Letters that do not decompose into a base letter plus marks.
var foldings = map[rune]rune{
	'ı': 'i', 'ø': 'o', 'Ø': 'o', 'ł': 'l', 'Ł': 'l', 'đ': 'd', 'Đ': 'd',
}

// Generate creates a URL-friendly slug from a display name. Accents are
// folded to ASCII and "&" reads as "and".
//
//	"Home & Garden"  → "home-and-garden"
//	"Crème Brûlée!"  → "creme-brulee"
func Generate(name string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			if f, ok := foldings[r]; ok {
				return f
			}
			return r
		}),
		norm.NFC,
	)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	s := strings.ToLower(strings.ReplaceAll(folded, "&", " and "))
	return strings.Trim(nonAlnum.ReplaceAllString(s, "-"), "-")
}
