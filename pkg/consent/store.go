// Package consent owns the visitor's accept/reject decision about
// non-essential data and the prompt that collects it.
package consent

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gokaycavdar/tickzero-landing/pkg/models"
	"github.com/gokaycavdar/tickzero-landing/pkg/storage"
)

// ErrInvalidDecision is returned when RecordDecision is given a status other
// than accepted or rejected.
var ErrInvalidDecision = errors.New("consent: decision must be accepted or rejected")

// timestampLayout matches what browsers produce for Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Store reads and writes the ConsentRecord. It never caches: every query
// goes back to the underlying storage so that components sharing the same
// origin never observe a stale decision.
type Store struct {
	kv     storage.Store
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a consent store on top of kv.
func NewStore(kv storage.Store, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status returns the persisted decision. Absent, unreadable or malformed
// records all read as ConsentUnset.
func (s *Store) Status() models.ConsentStatus {
	rec, ok := s.record()
	if !ok {
		return models.ConsentUnset
	}
	return rec.Status
}

// Record returns the persisted record, if a valid one exists.
func (s *Store) Record() (models.ConsentRecord, bool) {
	return s.record()
}

func (s *Store) record() (models.ConsentRecord, bool) {
	raw, ok, err := s.kv.Get(models.KeyConsent)
	if err != nil {
		s.logger.Debug("consent record unreadable", "error", err)
		return models.ConsentRecord{}, false
	}
	if !ok {
		return models.ConsentRecord{}, false
	}

	var rec models.ConsentRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.logger.Debug("consent record malformed", "error", err)
		return models.ConsentRecord{}, false
	}
	if !rec.Valid() {
		return models.ConsentRecord{}, false
	}
	return rec, true
}

// RecordDecision overwrites the record with decision and the current time.
func (s *Store) RecordDecision(decision models.ConsentStatus) error {
	if !decision.IsDecision() {
		return ErrInvalidDecision
	}

	rec := models.ConsentRecord{
		Status:    decision,
		Timestamp: s.now().UTC().Format(timestampLayout),
		Version:   models.ConsentSchemaVersion,
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode consent record: %w", err)
	}
	if err := s.kv.Set(models.KeyConsent, string(payload)); err != nil {
		return fmt.Errorf("persist consent record: %w", err)
	}
	return nil
}

// CanUseNonEssential reports whether the visitor accepted non-essential
// data collection.
func (s *Store) CanUseNonEssential() bool {
	return s.Status() == models.ConsentAccepted
}

// ClearNonEssentialData removes every stored entry except the consent
// record. Entries that cannot be removed are skipped. It returns the number
// of entries removed.
func (s *Store) ClearNonEssentialData() int {
	keys, err := s.kv.Keys()
	if err != nil {
		s.logger.Debug("cannot enumerate stored entries", "error", err)
		return 0
	}

	removed := 0
	for _, key := range keys {
		if key == models.KeyConsent {
			continue
		}
		if err := s.kv.Remove(key); err != nil {
			s.logger.Debug("skipping entry", "key", key, "error", err)
			continue
		}
		removed++
	}
	return removed
}
