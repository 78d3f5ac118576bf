package consent

import (
	"log/slog"
	"time"

	"github.com/gokaycavdar/tickzero-landing/pkg/models"
)

// DefaultDismissDelay matches the banner's hide animation.
const DefaultDismissDelay = 400 * time.Millisecond

// State is the display state of the consent prompt.
type State int

const (
	StateHidden State = iota
	StatePrompting
	StateAccepted
	StateRejected
)

func (s State) String() string {
	switch s {
	case StatePrompting:
		return "prompting"
	case StateAccepted:
		return "resolved_accepted"
	case StateRejected:
		return "resolved_rejected"
	default:
		return "hidden"
	}
}

// Resolved reports whether s is one of the terminal states.
func (s State) Resolved() bool {
	return s == StateAccepted || s == StateRejected
}

// Presenter renders and removes the prompt.
type Presenter interface {
	Show()
	// Dismiss hides the prompt and removes it after delay.
	Dismiss(delay time.Duration)
}

// EventTracker receives the consent acceptance event. Implementations must
// apply their own consent gate.
type EventTracker interface {
	TrackEvent(category, action, label string) bool
}

// Banner drives the consent prompt for one session. Its state advances on
// every click even when persisting the decision fails, so the prompt does
// not come back before the next load.
type Banner struct {
	store     *Store
	presenter Presenter
	tracker   EventTracker
	delay     time.Duration
	logger    *slog.Logger

	state State
}

// BannerOption configures a Banner.
type BannerOption func(*Banner)

// WithDismissDelay overrides DefaultDismissDelay.
func WithDismissDelay(d time.Duration) BannerOption {
	return func(b *Banner) { b.delay = d }
}

// WithTracker sets the tracker notified on acceptance.
func WithTracker(t EventTracker) BannerOption {
	return func(b *Banner) { b.tracker = t }
}

// WithBannerLogger sets the logger for persistence failures.
func WithBannerLogger(l *slog.Logger) BannerOption {
	return func(b *Banner) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBanner creates a banner in StateHidden. Call Load to initialise it.
func NewBanner(store *Store, presenter Presenter, opts ...BannerOption) *Banner {
	b := &Banner{
		store:     store,
		presenter: presenter,
		delay:     DefaultDismissDelay,
		logger:    slog.Default(),
		state:     StateHidden,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current display state.
func (b *Banner) State() State {
	return b.state
}

// Load reads the persisted decision and shows the prompt if there is none.
// It only has an effect on a hidden banner.
func (b *Banner) Load() State {
	if b.state != StateHidden {
		return b.state
	}

	switch b.store.Status() {
	case models.ConsentAccepted:
		b.state = StateAccepted
	case models.ConsentRejected:
		b.state = StateRejected
	default:
		b.state = StatePrompting
		if b.presenter != nil {
			b.presenter.Show()
		}
	}
	return b.state
}

// OnAcceptClicked handles the accept intent. Clicks outside the prompting
// state are ignored.
func (b *Banner) OnAcceptClicked() State {
	if b.state != StatePrompting {
		return b.state
	}

	b.resolve(models.ConsentAccepted, StateAccepted)
	if b.tracker != nil {
		b.tracker.TrackEvent("cookie_consent", "accept", "gdpr")
	}
	return b.state
}

// OnRejectClicked handles the reject intent and clears non-essential data.
func (b *Banner) OnRejectClicked() State {
	if b.state != StatePrompting {
		return b.state
	}

	b.resolve(models.ConsentRejected, StateRejected)
	removed := b.store.ClearNonEssentialData()
	b.logger.Debug("non-essential data cleared", "removed", removed)
	return b.state
}

func (b *Banner) resolve(decision models.ConsentStatus, next State) {
	if err := b.store.RecordDecision(decision); err != nil {
		b.logger.Warn("consent decision not persisted", "decision", decision, "error", err)
	}
	b.state = next
	if b.presenter != nil {
		b.presenter.Dismiss(b.delay)
	}
}
