package auth

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/net/publicsuffix"

	"github.com/hazyhaar/reelkeeper/horosafe"
)

// Hosts the resolver talks to. Cookies are seeded for both.
var instagramHosts = []string{
	"https://www.instagram.com/",
	"https://i.instagram.com/",
}

// NewJar returns a cookie jar scoped with the public suffix list.
func NewJar() http.CookieJar {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

// Seed installs cookies on jar for every Instagram API host. Cookies
// without a domain are scoped to .instagram.com.
func Seed(jar http.CookieJar, cookies []*http.Cookie) {
	if jar == nil || len(cookies) == 0 {
		return
	}
	for _, c := range cookies {
		if c.Domain == "" {
			c.Domain = ".instagram.com"
		}
		if c.Path == "" {
			c.Path = "/"
		}
	}
	for _, raw := range instagramHosts {
		u, _ := url.Parse(raw)
		jar.SetCookies(u, cookies)
	}
}

// FromCredentials converts stored credentials to cookies.
func FromCredentials(c Credentials) []*http.Cookie {
	var out []*http.Cookie
	for name, value := range c.Cookies() {
		out = append(out, &http.Cookie{Name: name, Value: value, Domain: ".instagram.com", Path: "/", Secure: true})
	}
	return out
}

// FromBrowser converts browser cookies, keeping only Instagram ones.
func FromBrowser(cookies []*proto.NetworkCookie) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range cookies {
		if !horosafe.IsInstagramHost(trimDot(c.Domain)) {
			continue
		}
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		if !c.Session && c.Expires > 0 {
			hc.Expires = time.Unix(int64(c.Expires), 0)
		}
		out = append(out, hc)
	}
	return out
}

func trimDot(domain string) string {
	if len(domain) > 0 && domain[0] == '.' {
		return domain[1:]
	}
	return domain
}
