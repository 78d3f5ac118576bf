package storage

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// maxCookieSize is the per-cookie limit browsers are required to honour
// (name, value and attributes included). We only budget name and value.
const maxCookieSize = 4093

// CookieOptions controls the attributes of cookies written by CookieStore.
type CookieOptions struct {
	MaxAge time.Duration
	Secure bool
	Domain string
}

// CookieStore exposes the cookie jar of one HTTP exchange as a Store. Reads
// come from the request, writes become Set-Cookie headers on the response.
// Writes made during the exchange are visible to later reads.
//
// All cookies are written with Path "/" so that every localized page of the
// origin shares them.
type CookieStore struct {
	req  *http.Request
	w    http.ResponseWriter
	opts CookieOptions

	mu sync.Mutex
	// pending holds writes made during this exchange. A nil entry marks a
	// removed cookie.
	pending map[string]*string
}

// NewCookieStore binds a store to a request/response pair.
func NewCookieStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStore {
	return &CookieStore{
		req:     r,
		w:       w,
		opts:    opts,
		pending: make(map[string]*string),
	}
}

// Get returns the cookie value for key, unescaped.
func (c *CookieStore) Get(key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.pending[key]; ok {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}

	ck, err := c.req.Cookie(key)
	if err != nil {
		return "", false, nil
	}

	v, err := url.QueryUnescape(ck.Value)
	if err != nil {
		return "", false, fmt.Errorf("decode cookie %q: %w", key, err)
	}
	return v, true, nil
}

// Set writes a cookie valid for the whole origin.
func (c *CookieStore) Set(key, value string) error {
	if !validCookieName(key) {
		return ErrInvalidKey
	}

	encoded := url.QueryEscape(value)
	if len(key)+len(encoded)+1 > maxCookieSize {
		return ErrValueTooLarge
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    encoded,
		Path:     "/",
		Domain:   c.opts.Domain,
		MaxAge:   int(c.opts.MaxAge / time.Second),
		Secure:   c.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.pending[key] = &value
	return nil
}

// Remove expires the cookie. Cookies scoped to another path or domain
// cannot be reached from here and stay in the browser.
func (c *CookieStore) Remove(key string) error {
	if !validCookieName(key) {
		return ErrInvalidKey
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	http.SetCookie(c.w, &http.Cookie{
		Name:    key,
		Value:   "",
		Path:    "/",
		Domain:  c.opts.Domain,
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
	c.pending[key] = nil
	return nil
}

// Keys lists request cookies plus cookies written during this exchange,
// minus the ones removed.
func (c *CookieStore) Keys() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool)
	for _, ck := range c.req.Cookies() {
		seen[ck.Name] = true
	}
	for k, v := range c.pending {
		seen[k] = v != nil
	}

	keys := make([]string, 0, len(seen))
	for k, present := range seen {
		if present {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func validCookieName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r <= ' ' || r >= 0x7f {
			return false
		}
	}
	return !strings.ContainsAny(name, "\"(),/:;<=>?@[]\\{}")
}
