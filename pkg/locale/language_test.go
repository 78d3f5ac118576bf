package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageLanguage(t *testing.T) {
	cases := map[string]string{
		"/":                  "en",
		"/index.html":        "en",
		"/it/index.html":     "it",
		"/zh/":               "zh",
		"/de":                "de",
		"/ru/faq.html":       "ru",
		"/xx/index.html":     "en",
		"/IT/index.html":     "en",
		"/italy/index.html":  "en",
		"/assets/it/app.css": "en",
		"":                   "en",
	}
	for path, want := range cases {
		assert.Equal(t, want, PageLanguage(path, BaseLanguage), path)
	}
}

func TestTargetPath(t *testing.T) {
	assert.Equal(t, "/index.html", TargetPath("en", "en"))
	assert.Equal(t, "/it/index.html", TargetPath("it", "en"))
	assert.Equal(t, "/en/index.html", TargetPath("en", "it"))
}

func TestLanguageFromHref(t *testing.T) {
	cases := []struct {
		href string
		lang string
		ok   bool
	}{
		{"/fr/index.html", "fr", true},
		{"../es/index.html", "es", true},
		{"index.html", "en", true},
		{"/index.html", "en", true},
		{"/", "en", true},
		{"/download.html", "", false},
	}
	for _, tc := range cases {
		lang, ok := LanguageFromHref(tc.href, BaseLanguage)
		assert.Equal(t, tc.ok, ok, tc.href)
		assert.Equal(t, tc.lang, lang, tc.href)
	}
}

func TestBaseCode(t *testing.T) {
	assert.Equal(t, "it", BaseCode("it-IT"))
	assert.Equal(t, "zh", BaseCode("zh_CN"))
	assert.Equal(t, "de", BaseCode("de"))
	assert.Equal(t, "", BaseCode(""))
}

func TestDeclaredLanguage(t *testing.T) {
	cases := map[string]string{
		"it-IT,it;q=0.9,en;q=0.8": "it",
		"fr-CA":                   "fr",
		"zh-Hant-TW":              "zh",
		"en;q=0.1, de":            "de",
		"":                        "",
		"   ":                     "",
	}
	for header, want := range cases {
		assert.Equal(t, want, DeclaredLanguage(header), header)
	}
}

func TestIsSupported(t *testing.T) {
	for _, code := range Supported {
		assert.True(t, IsSupported(code))
	}
	assert.False(t, IsSupported("pt"))
	assert.False(t, IsSupported("IT"))
	assert.False(t, IsSupported("it-IT"))
}
