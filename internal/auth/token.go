package auth

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TokenMatcher is one strategy for pulling an anti-forgery token out of a
// login page. Matchers run in priority order; the first hit wins.
type TokenMatcher interface {
	Name() string
	Extract(html string) (string, bool)
}

// regexMatcher wraps a single-capture-group pattern.
type regexMatcher struct {
	name string
	re   *regexp.Regexp
}

func (m *regexMatcher) Name() string { return m.name }

func (m *regexMatcher) Extract(html string) (string, bool) {
	match := m.re.FindStringSubmatch(html)
	if len(match) < 2 || match[1] == "" {
		return "", false
	}
	return match[1], true
}

// metaTagMatcher handles <meta name="csrf-token" content="..."> with a real
// HTML parser; attribute order and quoting stop mattering.
type metaTagMatcher struct{}

func (m *metaTagMatcher) Name() string { return "meta-tag" }

func (m *metaTagMatcher) Extract(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}
	content, exists := doc.Find(`meta[name="csrf-token"]`).Attr("content")
	if !exists || content == "" {
		return "", false
	}
	return content, true
}

// DefaultMatchers returns the ordered strategy set: hidden-input forms in
// both attribute orders, a generic csrf key/value, then the meta tag.
func DefaultMatchers() []TokenMatcher {
	return []TokenMatcher{
		&regexMatcher{
			name: "input-name-first",
			re:   regexp.MustCompile(`(?i)name=["'](?:_token|csrf[-_]?token)["'][^>]*value=["']([^"']+)["']`),
		},
		&regexMatcher{
			name: "input-value-first",
			re:   regexp.MustCompile(`(?i)value=["']([^"']+)["'][^>]*name=["'](?:_token|csrf[-_]?token)["']`),
		},
		&regexMatcher{
			name: "generic-key-value",
			re:   regexp.MustCompile(`(?i)csrf[-_]?token["']?\s*[:=]\s*["']([^"']+)["']`),
		},
		&metaTagMatcher{},
	}
}

// ExtractToken runs the matchers in order over the page body. Absence of a
// token is not an error; some firmware ships without CSRF protection.
func ExtractToken(html string, matchers []TokenMatcher) (string, string, bool) {
	for _, m := range matchers {
		if token, ok := m.Extract(html); ok {
			return token, m.Name(), true
		}
	}
	return "", "", false
}
