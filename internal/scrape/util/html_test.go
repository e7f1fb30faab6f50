package util

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToText(t *testing.T) {
	assert.Equal(t, "Hello world", HTMLToText(`<p>Hello <b>world</b></p><script>track()</script><style>p{}</style>`))
	assert.Equal(t, "Tom & Jerry", HTMLToText("<div>Tom &amp;\n\n  Jerry</div>"))
	assert.Equal(t, "", HTMLToText("   "))
	assert.Equal(t, "plain text", HTMLToText("plain   text"))
}

func TestHTMLToTextIdempotent(t *testing.T) {
	inputs := []string{
		"<h3>About us</h3><ul><li>Go</li> <li>SQL</li></ul>",
		"<p>We&#39;re hiring in Berlin</p>",
		"already plain",
	}
	for _, in := range inputs {
		once := HTMLToText(in)
		assert.Equal(t, once, HTMLToText(once))
	}
}

func TestHTMLToTextTruncates(t *testing.T) {
	out := HTMLToText("<p>" + strings.Repeat("ä", MaxTextLen+500) + "</p>")
	assert.Equal(t, MaxTextLen, utf8.RuneCountInString(out))
}

func TestStripIframes(t *testing.T) {
	assert.Equal(t, "<p>a</p><p>b</p>", StripIframes("<p>a</p><IFRAME src=\"x\">\n</iframe><p>b</p>"))
	assert.Equal(t, "no frames", StripIframes("no frames"))
}

func TestSanitizeHTML(t *testing.T) {
	in := `<p onclick="steal()">Hi</p>` +
		`<iframe src="https://www.youtube.com/embed/dQw4w9WgXcQ" width="560"></iframe>` +
		`<iframe src="https://maps.example.com/office"></iframe>` +
		`<a href="javascript:alert(1)">bad</a><script>alert(2)</script>`
	out := SanitizeHTML(in)

	assert.Contains(t, out, `src="https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ"`)
	assert.Contains(t, out, `<a href="https://maps.example.com/office"`)
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "<script")
	assert.Contains(t, out, "<p>Hi</p>")
}

func TestYouTubeVideoID(t *testing.T) {
	assert.Equal(t, "dQw4w9WgXcQ", youTubeVideoID("https://youtu.be/dQw4w9WgXcQ"))
	assert.Equal(t, "dQw4w9WgXcQ", youTubeVideoID("//www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.Equal(t, "", youTubeVideoID("https://vimeo.com/123456"))
}
