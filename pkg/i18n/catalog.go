// Package i18n serves the localized copy of the consent prompt and the
// cookie policy.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var locales embed.FS

// Prompt is the copy of the consent banner.
type Prompt struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Accept    string `json:"accept"`
	Reject    string `json:"reject"`
	LearnMore string `json:"learn_more"`
}

// Policy is the copy of the cookie policy dialog.
type Policy struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Close string `json:"close"`
}

// Catalog looks up messages, falling back to English for missing ones.
type Catalog struct {
	bundle *goi18n.Bundle
}

// NewCatalog loads the embedded message files.
func NewCatalog() (*Catalog, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(locales, "locales/*.toml")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(locales, f); err != nil {
			return nil, fmt.Errorf("load %s: %w", path.Base(f), err)
		}
	}
	return &Catalog{bundle: bundle}, nil
}

// Languages lists the languages with a message file.
func (c *Catalog) Languages() []string {
	tags := c.bundle.LanguageTags()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.String())
	}
	return out
}

// Prompt returns the banner copy in lang.
func (c *Catalog) Prompt(lang string) Prompt {
	l := goi18n.NewLocalizer(c.bundle, lang)
	return Prompt{
		Title:     c.message(l, "ConsentTitle"),
		Body:      c.message(l, "ConsentBody"),
		Accept:    c.message(l, "ConsentAccept"),
		Reject:    c.message(l, "ConsentReject"),
		LearnMore: c.message(l, "ConsentLearnMore"),
	}
}

// Policy returns the cookie policy copy in lang.
func (c *Catalog) Policy(lang string) Policy {
	l := goi18n.NewLocalizer(c.bundle, lang)
	return Policy{
		Title: c.message(l, "PolicyTitle"),
		Body:  c.message(l, "PolicyBody"),
		Close: c.message(l, "PolicyClose"),
	}
}

func (c *Catalog) message(l *goi18n.Localizer, id string) string {
	msg, err := l.Localize(&goi18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return id
	}
	return msg
}
