package util

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// NormalizeDomain reduces a website to its bare lowercase hostname without
// "www.". Inputs that are not host-like (no dot, unparsable) yield "".
func NormalizeDomain(input string) string {
	host := hostOf(input)
	host = strings.TrimPrefix(host, "www.")
	if !strings.Contains(host, ".") {
		return ""
	}
	return host
}

// CompanyNameFromURL returns the registrable label of a website using the
// public suffix list: "https://jobs.acme.co.uk" gives "acme", and
// "acme.github.io" gives "acme". IP hosts and unparsable input give "".
func CompanyNameFromURL(input string) string {
	host := hostOf(input)
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}

	suffix, _ := publicsuffix.PublicSuffix(host)
	registrable := host
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		registrable = etld1
	}

	labels := strings.Split(registrable, ".")
	n := len(labels)
	if suffix != "" {
		n -= len(strings.Split(suffix, "."))
	}
	sld := ""
	if n > 0 {
		sld = labels[n-1]
	} else {
		sld = labels[0]
	}
	return slugIllegal.ReplaceAllString(strings.ToLower(sld), "")
}

// hostOf extracts a lowercase hostname, port and trailing dot removed.
func hostOf(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	var host string
	if schemePrefix.MatchString(s) {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}
		host = u.Hostname()
	} else {
		if i := strings.IndexAny(s, "/?#"); i >= 0 {
			s = s[:i]
		}
		host = s
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
	}
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimSuffix(host, ".")
}
