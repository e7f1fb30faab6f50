package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)
	slugIllegal    = regexp.MustCompile(`[^a-z0-9-]`)
	schemePrefix   = regexp.MustCompile(`(?i)^https?://`)
)

// SlugCandidates derives the ordered, de-duplicated account identifiers a
// company might use on a hosted job board. Name-derived joins come first
// (joined, hyphenated, underscored), then the website's leading label, then the same joins over an accent-folded name when folding changes
// anything. Every candidate matches ^[a-z0-9_-]+$.
func SlugCandidates(name, website string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	addJoins := func(n string) {
		tokens := slugTokens(n)
		if len(tokens) == 0 {
			return
		}
		add(strings.Join(tokens, ""))
		add(strings.Join(tokens, "-"))
		add(strings.Join(tokens, "_"))
	}

	addJoins(name)
	if website != "" {
		add(websiteLabel(website))
	}
	if folded := foldAccents(name); folded != name {
		addJoins(folded)
	}
	return out
}

func slugTokens(name string) []string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "&", "and")
	s = slugSeparators.ReplaceAllString(s, " ")
	return strings.Fields(s)
}

// websiteLabel is the left-most label of the website's host, "www." skipped.
func websiteLabel(website string) string {
	s := schemePrefix.ReplaceAllString(strings.TrimSpace(website), "")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.ToLower(s)
	s = strings.TrimPrefix(s, "www.")
	if i := strings.Index(s, "."); i >= 0 {
		s = s[:i]
	}
	return slugIllegal.ReplaceAllString(s, "")
}

// foldAccents strips combining marks: "Müller" becomes "Muller".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
