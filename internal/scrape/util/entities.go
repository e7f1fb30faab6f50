package util

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	rawTag        = regexp.MustCompile(`<[A-Za-z][^>]*>`)
	encodedTag    = regexp.MustCompile(`&lt;[A-Za-z][^&]*&gt;`)
	decimalRef    = regexp.MustCompile(`&#(\d+);`)
	hexRef        = regexp.MustCompile(`&#[xX]([0-9a-fA-F]+);`)
	namedEntities = [][2]string{
		{"&amp;", "&"},
		{"&lt;", "<"},
		{"&gt;", ">"},
		{"&quot;", `"`},
		{"&#39;", "'"},
		{"&apos;", "'"},
		{"&nbsp;", " "},
		{"&#160;", " "},
	}
)

// DecodeEntities decodes the common named entities and numeric references.
// "&amp;" is replaced first, so double-encoded markup such as "&amp;lt;p&amp;gt;"
// decodes all the way to "<p>".
func DecodeEntities(s string) string {
	for _, e := range namedEntities {
		s = strings.ReplaceAll(s, e[0], e[1])
	}
	s = decimalRef.ReplaceAllStringFunc(s, func(m string) string {
		n, err := strconv.ParseInt(decimalRef.FindStringSubmatch(m)[1], 10, 32)
		return runeOr(n, err, m)
	})
	s = hexRef.ReplaceAllStringFunc(s, func(m string) string {
		n, err := strconv.ParseInt(hexRef.FindStringSubmatch(m)[1], 16, 32)
		return runeOr(n, err, m)
	})
	return s
}

func runeOr(n int64, err error, fallback string) string {
	if err != nil || n <= 0 || !utf8.ValidRune(rune(n)) {
		return fallback
	}
	return string(rune(n))
}

// EnsureMarkup decodes s only when it holds entity-encoded tags and no real
// ones, which is how Greenhouse ships job content.
func EnsureMarkup(s string) string {
	if s == "" {
		return ""
	}
	if !rawTag.MatchString(s) && encodedTag.MatchString(s) {
		return DecodeEntities(s)
	}
	return s
}
