package consent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokaycavdar/tickzero-landing/pkg/models"
	"github.com/gokaycavdar/tickzero-landing/pkg/storage"
)

type recordingPresenter struct {
	shown     int
	dismissed []time.Duration
}

func (p *recordingPresenter) Show()                       { p.shown++ }
func (p *recordingPresenter) Dismiss(delay time.Duration) { p.dismissed = append(p.dismissed, delay) }

type recordingTracker struct {
	gate   *Store
	events []string
}

func (r *recordingTracker) TrackEvent(category, action, label string) bool {
	if !r.gate.CanUseNonEssential() {
		return false
	}
	r.events = append(r.events, category+"/"+action+"/"+label)
	return true
}

func TestBannerPromptsWhenUnset(t *testing.T) {
	p := &recordingPresenter{}
	b := NewBanner(NewStore(storage.NewMemoryStore()), p)

	assert.Equal(t, StateHidden, b.State())
	assert.Equal(t, StatePrompting, b.Load())
	assert.Equal(t, 1, p.shown)

	// Loading twice does not render a second prompt.
	b.Load()
	assert.Equal(t, 1, p.shown)
}

func TestBannerStartsResolved(t *testing.T) {
	for _, d := range []models.ConsentStatus{models.ConsentAccepted, models.ConsentRejected} {
		kv := storage.NewMemoryStore()
		require.NoError(t, NewStore(kv).RecordDecision(d))

		p := &recordingPresenter{}
		b := NewBanner(NewStore(kv), p)
		state := b.Load()

		assert.True(t, state.Resolved())
		assert.Zero(t, p.shown)
		assert.Equal(t, d == models.ConsentAccepted, state == StateAccepted)
	}
}

func TestBannerAccept(t *testing.T) {
	kv := storage.NewMemoryStore()
	store := NewStore(kv)
	p := &recordingPresenter{}
	tr := &recordingTracker{gate: store}
	b := NewBanner(store, p, WithTracker(tr), WithDismissDelay(250*time.Millisecond))

	b.Load()
	assert.Equal(t, StateAccepted, b.OnAcceptClicked())
	assert.Equal(t, models.ConsentAccepted, store.Status())
	assert.Equal(t, []time.Duration{250 * time.Millisecond}, p.dismissed)
	assert.Equal(t, []string{"cookie_consent/accept/gdpr"}, tr.events)

	// Resolved is terminal for the session.
	assert.Equal(t, StateAccepted, b.OnRejectClicked())
	assert.Equal(t, StateAccepted, b.OnAcceptClicked())
	assert.Len(t, p.dismissed, 1)
	assert.Equal(t, models.ConsentAccepted, store.Status())
}

func TestBannerReject(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set("_ga", "GA1"))
	require.NoError(t, kv.Set(models.KeyPreferredLanguage, "de"))

	store := NewStore(kv)
	p := &recordingPresenter{}
	b := NewBanner(store, p)

	b.Load()
	assert.Equal(t, StateRejected, b.OnRejectClicked())
	assert.Equal(t, []time.Duration{DefaultDismissDelay}, p.dismissed)

	keys, _ := kv.Keys()
	assert.Equal(t, []string{models.KeyConsent}, keys)
	assert.Equal(t, models.ConsentRejected, store.Status())
}

func TestBannerClickBeforeLoadIsIgnored(t *testing.T) {
	store := NewStore(storage.NewMemoryStore())
	b := NewBanner(store, nil)

	assert.Equal(t, StateHidden, b.OnAcceptClicked())
	assert.Equal(t, models.ConsentUnset, store.Status())
}

func TestBannerAdvancesWhenPersistFails(t *testing.T) {
	kv := newFlakyStore()
	kv.failSet = true

	store := NewStore(kv)
	p := &recordingPresenter{}
	tr := &recordingTracker{gate: store}
	b := NewBanner(store, p, WithTracker(tr))

	b.Load()
	assert.Equal(t, StateAccepted, b.OnAcceptClicked())
	assert.Len(t, p.dismissed, 1)

	// Nothing was persisted, so the gate stays closed and the next load
	// prompts again.
	assert.Empty(t, tr.events)
	assert.Equal(t, StatePrompting, NewBanner(store, nil).Load())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "hidden", StateHidden.String())
	assert.Equal(t, "prompting", StatePrompting.String())
	assert.Equal(t, "resolved_accepted", StateAccepted.String())
	assert.Equal(t, "resolved_rejected", StateRejected.String())
}
