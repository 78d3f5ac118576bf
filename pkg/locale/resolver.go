package locale

import (
	"log/slog"

	"github.com/gokaycavdar/tickzero-landing/pkg/models"
	"github.com/gokaycavdar/tickzero-landing/pkg/rules"
	"github.com/gokaycavdar/tickzero-landing/pkg/storage"
)

// Context carries the client signals needed for one resolution.
type Context struct {
	// DeclaredLanguage is the client's preferred language tag, e.g. "it-IT".
	DeclaredLanguage string
	UserAgent        string
	CurrentPath      string
}

// Navigator performs the redirect of a PersistAndRedirect action.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string)

func (f NavigatorFunc) Navigate(url string) { f(url) }

// Resolver runs first-visit language detection and keeps the preferred
// language up to date.
type Resolver struct {
	kv     storage.Store
	agents rules.Set
	base   string
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAgentRules replaces the default crawler rule.
func WithAgentRules(set rules.Set) Option {
	return func(r *Resolver) { r.agents = set }
}

// WithBaseLanguage sets the language served from the root.
func WithBaseLanguage(code string) Option {
	return func(r *Resolver) {
		if IsSupported(code) {
			r.base = code
		}
	}
}

// WithLogger sets the logger used for storage failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver over kv.
func NewResolver(kv storage.Store, opts ...Option) *Resolver {
	r := &Resolver{
		kv:     kv,
		agents: rules.Set{rules.DefaultCrawlerRule()},
		base:   BaseLanguage,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BaseLanguage returns the configured root language.
func (r *Resolver) BaseLanguage() string {
	return r.base
}

// DetectPageLanguage returns the language of the page at path.
func (r *Resolver) DetectPageLanguage(path string) string {
	return PageLanguage(path, r.base)
}

// IsFirstVisit reports whether detection has never run for this store.
// An unreadable flag counts as a first visit.
func (r *Resolver) IsFirstVisit() bool {
	_, ok, err := r.kv.Get(models.KeyLanguageDetected)
	if err != nil {
		r.logger.Debug("language flag unreadable", "error", err)
		return true
	}
	return !ok
}

// PreferredLanguage returns the stored preference, if any.
func (r *Resolver) PreferredLanguage() (string, bool) {
	v, ok, err := r.kv.Get(models.KeyPreferredLanguage)
	if err != nil || !ok || !IsSupported(v) {
		return "", false
	}
	return v, true
}

// Decide computes the action for ctx without touching storage.
func (r *Resolver) Decide(ctx Context, firstVisit bool) models.Action {
	if _, bot := r.agents.Match(ctx.UserAgent); bot {
		return models.Action{Kind: models.ActionNoOp}
	}

	page := r.DetectPageLanguage(ctx.CurrentPath)
	if !firstVisit {
		return models.Action{Kind: models.ActionUpdatePreference, Language: page}
	}

	declared := BaseCode(ctx.DeclaredLanguage)
	if IsSupported(declared) && declared != page {
		return models.Action{
			Kind:     models.ActionPersistAndRedirect,
			Language: declared,
			Target:   TargetPath(declared, r.base),
		}
	}
	return models.Action{Kind: models.ActionPersistOnly, Language: page}
}

// Resolve decides the action for ctx, applies its storage writes and, for a
// redirect, calls nav at most once. Automated agents leave storage untouched.
func (r *Resolver) Resolve(ctx Context, nav Navigator) models.Action {
	action := r.Decide(ctx, r.IsFirstVisit())

	switch action.Kind {
	case models.ActionPersistOnly:
		r.set(models.KeyLanguageDetected, "true")
		r.set(models.KeyPreferredLanguage, action.Language)
	case models.ActionPersistAndRedirect:
		r.set(models.KeyPreferredLanguage, action.Language)
		r.set(models.KeyLanguageDetected, "true")
		action = r.navigate(ctx, action, nav)
	case models.ActionUpdatePreference:
		r.set(models.KeyPreferredLanguage, action.Language)
	}
	return action
}

// navigate issues the redirect unless the target is the current location.
func (r *Resolver) navigate(ctx Context, action models.Action, nav Navigator) models.Action {
	if action.Target == ctx.CurrentPath {
		return action
	}
	if nav != nil {
		nav.Navigate(action.Target)
	}
	action.Navigated = true
	return action
}

// Select records an explicit language choice and returns its entry page.
// The choice also ends first-visit detection so the next page load cannot
// replace it with the declared language.
func (r *Resolver) Select(lang string) (string, error) {
	if !IsSupported(lang) {
		return "", ErrUnsupportedLanguage
	}
	r.set(models.KeyPreferredLanguage, lang)
	r.set(models.KeyLanguageDetected, "true")
	return TargetPath(lang, r.base), nil
}

func (r *Resolver) set(key, value string) {
	if err := r.kv.Set(key, value); err != nil {
		r.logger.Warn("language preference not persisted", "key", key, "error", err)
	}
}
