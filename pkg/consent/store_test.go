package consent

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokaycavdar/tickzero-landing/pkg/models"
	"github.com/gokaycavdar/tickzero-landing/pkg/storage"
)

var errQuota = errors.New("quota exceeded")

// flakyStore wraps a MemoryStore and fails writes or removals on demand.
type flakyStore struct {
	*storage.MemoryStore
	failSet    bool
	failRemove map[string]bool
	failKeys   bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: storage.NewMemoryStore(), failRemove: map[string]bool{}}
}

func (f *flakyStore) Set(key, value string) error {
	if f.failSet {
		return errQuota
	}
	return f.MemoryStore.Set(key, value)
}

func (f *flakyStore) Remove(key string) error {
	if f.failRemove[key] {
		return errors.New("domain mismatch")
	}
	return f.MemoryStore.Remove(key)
}

func (f *flakyStore) Keys() ([]string, error) {
	if f.failKeys {
		return nil, errors.New("enumeration unavailable")
	}
	return f.MemoryStore.Keys()
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStatusAbsentOrMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":        "{{{",
		"empty object":    "{}",
		"unknown status":  `{"status":"maybe","timestamp":"x","version":"1.0"}`,
		"unset status":    `{"status":"unset","timestamp":"x","version":"1.0"}`,
		"missing version": `{"status":"accepted","timestamp":"x"}`,
		"json array":      `["accepted"]`,
	}

	s := NewStore(storage.NewMemoryStore())
	assert.Equal(t, models.ConsentUnset, s.Status())

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			kv := storage.NewMemoryStore()
			require.NoError(t, kv.Set(models.KeyConsent, payload))

			s := NewStore(kv)
			assert.Equal(t, models.ConsentUnset, s.Status())
			assert.False(t, s.CanUseNonEssential())
		})
	}
}

func TestRecordDecision(t *testing.T) {
	kv := storage.NewMemoryStore()
	at := time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.FixedZone("CET", 3600))
	s := NewStore(kv, WithClock(fixedClock(at)))

	require.NoError(t, s.RecordDecision(models.ConsentAccepted))
	assert.Equal(t, models.ConsentAccepted, s.Status())
	assert.True(t, s.CanUseNonEssential())

	raw, ok, err := kv.Get(models.KeyConsent)
	require.NoError(t, err)
	require.True(t, ok)

	var rec map[string]string
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	assert.Equal(t, map[string]string{
		"status":    "accepted",
		"timestamp": "2026-03-14T08:26:53.589Z",
		"version":   "1.0",
	}, rec)

	require.NoError(t, s.RecordDecision(models.ConsentRejected))
	assert.Equal(t, models.ConsentRejected, s.Status())
	assert.False(t, s.CanUseNonEssential())
}

func TestRecordDecisionRejectsUnset(t *testing.T) {
	s := NewStore(storage.NewMemoryStore())
	assert.ErrorIs(t, s.RecordDecision(models.ConsentUnset), ErrInvalidDecision)
	assert.ErrorIs(t, s.RecordDecision("yes"), ErrInvalidDecision)
}

func TestRecordDecisionTwiceOnlyMovesTimestamp(t *testing.T) {
	kv := storage.NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(kv, WithClock(func() time.Time { return now }))

	require.NoError(t, s.RecordDecision(models.ConsentAccepted))
	first, ok := s.Record()
	require.True(t, ok)

	now = now.Add(time.Minute)
	require.NoError(t, s.RecordDecision(models.ConsentAccepted))
	second, ok := s.Record()
	require.True(t, ok)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Version, second.Version)
	assert.NotEqual(t, first.Timestamp, second.Timestamp)

	keys, _ := kv.Keys()
	assert.Equal(t, []string{models.KeyConsent}, keys)
}

func TestRecordDecisionWriteFailure(t *testing.T) {
	kv := newFlakyStore()
	kv.failSet = true

	s := NewStore(kv)
	err := s.RecordDecision(models.ConsentAccepted)
	assert.ErrorIs(t, err, errQuota)
	assert.Equal(t, models.ConsentUnset, s.Status())
}

func TestClearNonEssentialData(t *testing.T) {
	kv := newFlakyStore()
	for k, v := range map[string]string{
		models.KeyConsent:           `{"status":"rejected","timestamp":"t","version":"1.0"}`,
		models.KeyPreferredLanguage: "it",
		"_ga":                       "GA1.2.3",
		"_gid":                      "GA1.2.4",
		"foreign":                   "other-domain",
	} {
		require.NoError(t, kv.MemoryStore.Set(k, v))
	}
	kv.failRemove["foreign"] = true

	s := NewStore(kv)
	removed := s.ClearNonEssentialData()

	assert.Equal(t, 3, removed)
	keys, _ := kv.Keys()
	assert.Equal(t, []string{"foreign", models.KeyConsent}, keys)
	assert.Equal(t, models.ConsentRejected, s.Status())
}

func TestClearNonEssentialDataEnumerationFailure(t *testing.T) {
	kv := newFlakyStore()
	kv.failKeys = true

	assert.Zero(t, NewStore(kv).ClearNonEssentialData())
}
