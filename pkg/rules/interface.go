package rules

// Rule classifies a client from its user-agent string.
type Rule interface {
	// Name is a unique identifier, e.g. "crawler".
	Name() string

	// Description is a short human readable explanation.
	Description() string

	// Match reports whether userAgent is covered by the rule.
	Match(userAgent string) bool
}

// Set evaluates rules in the order they were added.
type Set []Rule

// Match returns the first rule matching userAgent.
func (s Set) Match(userAgent string) (Rule, bool) {
	for _, r := range s {
		if r.Match(userAgent) {
			return r, true
		}
	}
	return nil, false
}
