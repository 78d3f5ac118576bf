package engine

import (
	"log/slog"
	"time"

	"github.com/gokaycavdar/tickzero-landing/pkg/analytics"
	"github.com/gokaycavdar/tickzero-landing/pkg/consent"
	"github.com/gokaycavdar/tickzero-landing/pkg/locale"
	"github.com/gokaycavdar/tickzero-landing/pkg/models"
	"github.com/gokaycavdar/tickzero-landing/pkg/rules"
	"github.com/gokaycavdar/tickzero-landing/pkg/storage"
)

// Input holds the request signals of one page load.
//
// All fields are populated by the HTTP layer:
//   - Path: request URL path
//   - UserAgent: User-Agent header
//   - AcceptLanguage: Accept-Language header
//   - IPAddress: client IP, used only for the language fallback
type Input struct {
	Path           string
	UserAgent      string
	AcceptLanguage string
	IPAddress      string
}

// LanguageFallback guesses a language when the client declares none.
type LanguageFallback interface {
	LanguageForIP(ipAddress string) string
}

// Engine wires the consent and locale components for each page load. It
// holds configuration only; all visitor state lives in the store passed to
// Session and Load.
//
// Usage:
//
//	eng := engine.New(engine.WithDismissDelay(400 * time.Millisecond))
//	page := eng.Load(store, input, presenter, navigator)
type Engine struct {
	fallback     LanguageFallback
	agents       rules.Set
	base         string
	dismissDelay time.Duration
	sink         analytics.Sink
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

func WithLanguageFallback(f LanguageFallback) Option {
	return func(e *Engine) { e.fallback = f }
}

func WithAgentRules(set rules.Set) Option {
	return func(e *Engine) { e.agents = set }
}

func WithBaseLanguage(code string) Option {
	return func(e *Engine) { e.base = code }
}

func WithDismissDelay(d time.Duration) Option {
	return func(e *Engine) { e.dismissDelay = d }
}

// WithSink sets where accepted analytics events go. Defaults to a LogSink.
func WithSink(s analytics.Sink) Option {
	return func(e *Engine) { e.sink = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		agents:       rules.Set{rules.DefaultCrawlerRule()},
		base:         locale.BaseLanguage,
		dismissDelay: consent.DefaultDismissDelay,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sink == nil {
		e.sink = analytics.LogSink{Logger: e.logger}
	}
	return e
}

// Session bundles the components bound to one visitor's store.
type Session struct {
	Consent  *consent.Store
	Banner   *consent.Banner
	Resolver *locale.Resolver
	Tracker  *analytics.Tracker
}

// Session binds the components to kv. The banner is returned hidden.
func (e *Engine) Session(kv storage.Store, presenter consent.Presenter) *Session {
	cs := consent.NewStore(kv, consent.WithLogger(e.logger))
	tracker := analytics.NewTracker(cs, e.sink, e.logger)

	return &Session{
		Consent: cs,
		Banner: consent.NewBanner(cs, presenter,
			consent.WithDismissDelay(e.dismissDelay),
			consent.WithTracker(tracker),
			consent.WithBannerLogger(e.logger),
		),
		Resolver: locale.NewResolver(kv,
			locale.WithAgentRules(e.agents),
			locale.WithBaseLanguage(e.base),
			locale.WithLogger(e.logger),
		),
		Tracker: tracker,
	}
}

// Context converts request signals into a locale context. The client's
// declared language wins; the IP fallback is only consulted without one.
func (e *Engine) Context(in Input) locale.Context {
	declared := locale.DeclaredLanguage(in.AcceptLanguage)
	if declared == "" && e.fallback != nil && in.IPAddress != "" {
		declared = e.fallback.LanguageForIP(in.IPAddress)
	}
	return locale.Context{
		DeclaredLanguage: declared,
		UserAgent:        in.UserAgent,
		CurrentPath:      in.Path,
	}
}

// Page is the outcome of one page load.
type Page struct {
	Session *Session
	Locale  models.Action
	Consent consent.State
	// Language is the language the visitor ends up reading.
	Language string
}

// Load runs locale resolution, then initialises the consent banner. When
// the visitor is redirected the banner stays hidden; the target page will
// load it.
func (e *Engine) Load(kv storage.Store, in Input, presenter consent.Presenter, nav locale.Navigator) *Page {
	s := e.Session(kv, presenter)
	ctx := e.Context(in)

	action := s.Resolver.Resolve(ctx, nav)
	page := &Page{
		Session:  s,
		Locale:   action,
		Language: s.Resolver.DetectPageLanguage(in.Path),
	}

	if action.Redirects() {
		page.Language = action.Language
		page.Consent = consent.StateHidden
		return page
	}

	page.Consent = s.Banner.Load()
	e.logger.Debug("page loaded",
		"path", in.Path,
		"locale_action", action.Kind,
		"consent_state", page.Consent.String(),
	)
	return page
}
