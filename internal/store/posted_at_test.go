package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePostedAt(t *testing.T) {
	cases := map[string]string{
		"2024-05-01T10:00:00Z":            "2024-05-01T10:00:00Z",
		"2024-05-01T12:00:00.123+02:00":   "2024-05-01T10:00:00Z",
		"2024-03-05T09:30:00+0000":        "2024-03-05T09:30:00Z",
		"2024-05-01T10:00:00":             "2024-05-01T10:00:00Z",
		"2024-05-01 10:00:00":             "2024-05-01T10:00:00Z",
		"2024-05-01":                      "2024-05-01T00:00:00Z",
		"Wed, 01 May 2024 10:00:00 +0000": "2024-05-01T10:00:00Z",
		"Wed, 01 May 2024 10:00:00 UTC":   "2024-05-01T10:00:00Z",
		"1714557600000":                   "2024-05-01T10:00:00Z",
		"1714557600":                      "2024-05-01T10:00:00Z",
	}
	for in, want := range cases {
		got, ok := ParsePostedAt(in)
		if assert.True(t, ok, in) {
			assert.Equal(t, want, got.Truncate(time.Second).Format(time.RFC3339), in)
		}
	}

	for _, bad := range []string{"", "  ", "yesterday", "01/05/2024", "0"} {
		_, ok := ParsePostedAt(bad)
		assert.False(t, ok, bad)
	}
}
