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

// Letters that do not decompose into base + combining mark.
var special = strings.NewReplacer(
	"ı", "i", "ß", "ss", "ø", "o", "æ", "ae", "œ", "oe", "ł", "l", "đ", "d",
	"&", " and ",
)

// Generate creates a URL-friendly slug from name. Accented letters are folded
// to ASCII and runs of other characters collapse into single hyphens.
//
//	"Kadın Giyim"      -> "kadin-giyim"
//	"Café & Crème"     -> "cafe-and-creme"
//	"  Hello   World!" -> "hello-world"
func Generate(name string) string {
	s := special.Replace(strings.ToLower(strings.TrimSpace(name)))

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Matches reports whether query occurs in name or slug, ignoring case and
// accents. Category search filters with it.
func Matches(name, slugValue, query string) bool {
	q := Generate(query)
	if q == "" {
		return true
	}
	return strings.Contains(Generate(name), q) || strings.Contains(slugValue, q)
}
