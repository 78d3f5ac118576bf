package storage

import (
	"fmt"
	"strings"
)

// PrefixedStore scopes an inner store to a single namespace, typically one
// visitor of a shared server-side backend.
type PrefixedStore struct {
	inner  Store
	prefix string
}

// NewPrefixedStore returns a view of inner restricted to keys under prefix.
func NewPrefixedStore(inner Store, prefix string) *PrefixedStore {
	return &PrefixedStore{inner: inner, prefix: prefix}
}

func (p *PrefixedStore) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidKey
	}
	return p.inner.Get(p.prefix + key)
}

func (p *PrefixedStore) Set(key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return p.inner.Set(p.prefix+key, value)
}

func (p *PrefixedStore) Remove(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return p.inner.Remove(p.prefix + key)
}

// Keys lists the keys of this namespace with the prefix stripped.
func (p *PrefixedStore) Keys() ([]string, error) {
	all, err := p.inner.Keys()
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", p.prefix, err)
	}

	keys := make([]string, 0, len(all))
	for _, k := range all {
		if rest, ok := strings.CutPrefix(k, p.prefix); ok && rest != "" {
			keys = append(keys, rest)
		}
	}
	return keys, nil
}
