package models

// ActionKind identifies the outcome of a locale resolution.
type ActionKind string

const (
	// ActionNoOp is returned for automated agents. Nothing is written.
	ActionNoOp ActionKind = "noop"
	// ActionPersistOnly marks the first visit as detected without redirecting.
	ActionPersistOnly ActionKind = "persist_only"
	// ActionPersistAndRedirect marks the first visit and redirects once.
	ActionPersistAndRedirect ActionKind = "persist_and_redirect"
	// ActionUpdatePreference is the steady state for every later visit.
	ActionUpdatePreference ActionKind = "update_preference"
)

// Action is the decision produced by the locale resolver for one page load.
type Action struct {
	Kind     ActionKind
	Language string

	// Target is the localized URL for ActionPersistAndRedirect.
	Target string

	// Navigated is false when the redirect was suppressed because Target
	// equals the current location.
	Navigated bool
}

// Redirects reports whether the action resulted in a navigation.
func (a Action) Redirects() bool {
	return a.Kind == ActionPersistAndRedirect && a.Navigated
}
