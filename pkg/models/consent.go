package models

// ConsentStatus is the persisted decision about non-essential data collection.
type ConsentStatus string

const (
	ConsentUnset    ConsentStatus = "unset"
	ConsentAccepted ConsentStatus = "accepted"
	ConsentRejected ConsentStatus = "rejected"
)

// ConsentSchemaVersion is written into every ConsentRecord.
const ConsentSchemaVersion = "1.0"

// Persisted key names. These are the only keys the consent and locale
// components ever write.
const (
	KeyConsent           = "tickzero_cookie_consent"
	KeyPreferredLanguage = "preferredLanguage"
	KeyLanguageDetected  = "languageDetected"
)

// ConsentRecord is the JSON payload stored under KeyConsent.
//
// Timestamp is an RFC 3339 string rather than time.Time so a record written
// by any client round-trips unchanged.
type ConsentRecord struct {
	Status    ConsentStatus `json:"status"`
	Timestamp string        `json:"timestamp"`
	Version   string        `json:"version"`
}

// IsDecision reports whether s is one of the two terminal decisions.
func (s ConsentStatus) IsDecision() bool {
	return s == ConsentAccepted || s == ConsentRejected
}

// Valid reports whether the record carries a decision and a schema version.
// Anything else is treated as absent.
func (r ConsentRecord) Valid() bool {
	return r.Status.IsDecision() && r.Version != ""
}
