package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeEntities(t *testing.T) {
	assert.Equal(t, `<p class="x">it's</p>`, DecodeEntities("&lt;p class=&quot;x&quot;&gt;it&#39;s&lt;/p&gt;"))
	assert.Equal(t, "äA", DecodeEntities("&#228;&#x41;"))
	assert.Equal(t, "a b", DecodeEntities("a&nbsp;b"))
	assert.Equal(t, "<b>", DecodeEntities("&amp;lt;b&amp;gt;"))
	assert.Equal(t, "&#0;", DecodeEntities("&#0;"))
}

func TestEnsureMarkup(t *testing.T) {
	assert.Equal(t, "<p>Hi</p>", EnsureMarkup("&lt;p&gt;Hi&lt;/p&gt;"))
	// real tags present: left alone
	assert.Equal(t, "<p>&lt;b&gt;</p>", EnsureMarkup("<p>&lt;b&gt;</p>"))
	// no encoded tags: left alone
	assert.Equal(t, "Tom &amp; Jerry", EnsureMarkup("Tom &amp; Jerry"))
	assert.Equal(t, "", EnsureMarkup(""))
}
