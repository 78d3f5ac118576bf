package web

import (
	"time"

	"github.com/gokaycavdar/tickzero-landing/pkg/locale"
)

// responsePresenter turns banner callbacks into response fields for the
// client-side script that owns the actual DOM.
type responsePresenter struct {
	shown        bool
	dismissed    bool
	dismissDelay time.Duration
}

func (p *responsePresenter) Show() {
	p.shown = true
}

func (p *responsePresenter) Dismiss(delay time.Duration) {
	p.dismissed = true
	p.dismissDelay = delay
}

// redirectRecorder captures the navigation of a locale action.
type redirectRecorder struct {
	target string
}

func (r *redirectRecorder) Navigate(url string) {
	r.target = url
}

var _ locale.Navigator = (*redirectRecorder)(nil)
