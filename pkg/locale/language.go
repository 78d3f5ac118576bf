// Package locale decides which localized page a visitor should see and keeps
// the stored language preference in sync with the pages they view.
package locale

import (
	"errors"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// BaseLanguage is served from the site root.
const BaseLanguage = "en"

// Supported lists the languages the site is translated into.
var Supported = []string{"en", "it", "es", "fr", "de", "ru", "zh"}

// ErrUnsupportedLanguage is returned for codes outside Supported.
var ErrUnsupportedLanguage = errors.New("locale: unsupported language")

var (
	pageSegment = regexp.MustCompile(`^/([a-z]{2})(?:/|$)`)
	hrefPage    = regexp.MustCompile(`/([a-z]{2})/index\.html$`)
)

// IsSupported reports an exact match against Supported.
func IsSupported(code string) bool {
	return slices.Contains(Supported, code)
}

// PageLanguage returns the language of the page at path: the leading
// two-letter segment when it names a supported language, base otherwise.
func PageLanguage(path, base string) string {
	m := pageSegment.FindStringSubmatch(path)
	if m != nil && IsSupported(m[1]) {
		return m[1]
	}
	return base
}

// TargetPath is the entry page for lang.
func TargetPath(lang, base string) string {
	if lang == base {
		return "/index.html"
	}
	return "/" + lang + "/index.html"
}

// LanguageFromHref extracts the language of a language-switch link.
func LanguageFromHref(href, base string) (string, bool) {
	if m := hrefPage.FindStringSubmatch(href); m != nil {
		return m[1], true
	}
	switch href {
	case "index.html", "/index.html", "/":
		return base, true
	}
	return "", false
}

// BaseCode strips region and script subtags: "it-IT" becomes "it".
func BaseCode(tag string) string {
	code, _, _ := strings.Cut(tag, "-")
	code, _, _ = strings.Cut(code, "_")
	return code
}

// DeclaredLanguage returns the primary language of an Accept-Language
// header, reduced to its base code. It returns "" when the header is empty
// or cannot be parsed.
func DeclaredLanguage(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return ""
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 || tags[0] == language.Und {
		return ""
	}

	b, conf := tags[0].Base()
	if conf == language.No {
		return ""
	}
	return b.String()
}
