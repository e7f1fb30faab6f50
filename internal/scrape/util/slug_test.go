package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugCandidates(t *testing.T) {
	tests := []struct {
		name    string
		company string
		website string
		want    []string
	}{
		{"name and website", "Acme Corp", "https://acme.io", []string{"acmecorp", "acme-corp", "acme_corp", "acme"}},
		{"website label after name joins", "Foo Bar", "https://www.foobar-labs.com/careers", []string{"foobar", "foo-bar", "foo_bar", "foobar-labs"}},
		{"ampersand becomes and", "Smith & Sons", "", []string{"smithandsons", "smith-and-sons", "smith_and_sons"}},
		{"ampersand keeps tokens joined", "AT&T", "", []string{"atandt"}},
		{"no first-token candidate", "acme-labs", "https://acme-labs.io", []string{"acmelabs", "acme-labs", "acme_labs"}},
		{"website label before nothing else", "Deutsche Bank", "https://db.com", []string{"deutschebank", "deutsche-bank", "deutsche_bank", "db"}},
		{"single token", "acme", "", []string{"acme"}},
		{"website only", "", "HTTPS://Globex.de", []string{"globex"}},
		{"nothing", "", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SlugCandidates(tt.company, tt.website))
		})
	}
}

func TestSlugCandidatesFoldsAccentsLast(t *testing.T) {
	got := SlugCandidates("Müller & Söhne", "")
	assert.Equal(t, []string{
		"mllerandshne", "m-ller-and-s-hne", "m_ller_and_s_hne",
		"mullerandsohne", "muller-and-sohne", "muller_and_sohne",
	}, got)
}

func TestSlugCandidatesAlphabetAndUniqueness(t *testing.T) {
	legal := regexp.MustCompile(`^[a-z0-9_-]+$`)
	inputs := [][2]string{
		{"Acme, Inc.", "https://acme.com"},
		{"  Über   Größe  GmbH ", "www.uber-grosse.de"},
		{"ACME", "acme.io:8080/jobs"},
		{"東京 Tech", "https://tokyo.tech"},
	}
	for _, in := range inputs {
		got := SlugCandidates(in[0], in[1])
		seen := map[string]bool{}
		for _, s := range got {
			assert.Regexp(t, legal, s)
			assert.False(t, seen[s], "duplicate candidate %q", s)
			seen[s] = true
		}
	}
}
