package util

import (
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// MaxTextLen caps the characters HTMLToText returns.
const MaxTextLen = 20000

const wrapperID = "jm-root"

func parseFragment(raw string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div id="` + wrapperID + `">` + raw + `</div>`))
	if err != nil {
		return nil, err
	}
	return doc.Find("#" + wrapperID).First(), nil
}

// HTMLToText renders an HTML fragment as collapsed plain text, dropping
// script, style and noscript content.
func HTMLToText(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	root, err := parseFragment(raw)
	if err != nil {
		return ""
	}
	root.Find("script,style,noscript").Remove()
	return truncateRunes(CleanText(root.Text()), MaxTextLen)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

var iframeBlock = regexp.MustCompile(`(?is)<iframe.*?</iframe>`)

// StripIframes removes every <iframe ...>...</iframe> block.
func StripIframes(s string) string {
	return iframeBlock.ReplaceAllString(s, "")
}

var youTubeID = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)

// SanitizeHTML makes provider description markup safe to render: active
// content is removed, YouTube embeds move to the privacy-enhanced domain,
// other iframes become plain links, and event-handler attributes and
// javascript: URLs are dropped.
func SanitizeHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	root, err := parseFragment(raw)
	if err != nil {
		return ""
	}
	root.Find("script,style,noscript,object,embed,form").Remove()

	root.Find("iframe").Each(func(_ int, f *goquery.Selection) {
		src := strings.TrimSpace(f.AttrOr("src", ""))
		if id := youTubeVideoID(src); id != "" {
			f.SetAttr("src", "https://www.youtube-nocookie.com/embed/"+id)
			return
		}
		if !isHTTPURL(src) {
			f.Remove()
			return
		}
		esc := html.EscapeString(src)
		f.ReplaceWithHtml(`<a href="` + esc + `" target="_blank" rel="noopener noreferrer">` + esc + `</a>`)
	})

	root.Find("*").Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			key := strings.ToLower(a.Key)
			if strings.HasPrefix(key, "on") {
				continue
			}
			if key == "href" || key == "src" || key == "action" {
				v := strings.ToLower(strings.TrimSpace(a.Val))
				if strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:") {
					continue
				}
			}
			kept = append(kept, a)
		}
		n.Attr = kept
	})

	out, err := root.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// youTubeVideoID recognises embed, watch and youtu.be URLs.
func youTubeVideoID(src string) string {
	if strings.HasPrefix(src, "//") {
		src = "https:" + src
	}
	u, err := url.Parse(src)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	var id string
	switch host {
	case "youtube.com", "youtube-nocookie.com":
		if rest, ok := strings.CutPrefix(u.Path, "/embed/"); ok {
			id = strings.Trim(rest, "/")
		} else if u.Path == "/watch" {
			id = u.Query().Get("v")
		}
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	}
	if !youTubeID.MatchString(id) {
		return ""
	}
	return id
}
