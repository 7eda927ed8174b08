package feed

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const defaultSlug = "putcast"

var pathSeparators = strings.NewReplacer("/", " ", "\\", " ")

// Slug turns a feed name into the trailing path segment of its public URL:
// accents are folded, other non-ASCII runes dropped, path separators turned
// into spaces, and the rest query-escaped. The result is always a single
// path segment.
func Slug(name string) string {
	fold := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)

	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = ""
	}

	folded = strings.TrimSpace(pathSeparators.Replace(folded))
	if folded == "" {
		return defaultSlug
	}
	return url.QueryEscape(folded)
}
