package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gokaycavdar/tickzero-landing/pkg/storage"
)

// VisitorCookie identifies a visitor for server-side backends.
const VisitorCookie = "landing_visitor"

const ctxKeyStore = "landing.store"

// StoreFactory returns the store of the visitor behind c.
type StoreFactory func(c *gin.Context) (storage.Store, error)

// CookieStores keeps all state in the visitor's own cookies.
func CookieStores(opts storage.CookieOptions) StoreFactory {
	return func(c *gin.Context) (storage.Store, error) {
		return storage.NewCookieStore(c.Writer, c.Request, opts), nil
	}
}

// VisitorStores keeps state server-side, keyed by a visitor id cookie. The
// id is issued on the first write, so visitors that never store anything
// (crawlers, asset requests) receive no cookie.
func VisitorStores(opts storage.CookieOptions, open func(ctx context.Context, visitorID string) storage.Store) StoreFactory {
	return func(c *gin.Context) (storage.Store, error) {
		if id, ok := existingVisitor(c); ok {
			return open(c.Request.Context(), id), nil
		}
		return &pendingVisitorStore{c: c, opts: opts, open: open}, nil
	}
}

// MemoryVisitorStores namespaces a shared MemoryStore per visitor. Nothing is
// evicted and Keys scans every visitor, so it suits development and single
// small instances; bound it with MemoryStore.MaxKeys.
func MemoryVisitorStores(opts storage.CookieOptions, shared *storage.MemoryStore) StoreFactory {
	return VisitorStores(opts, func(_ context.Context, id string) storage.Store {
		return storage.NewPrefixedStore(shared, "visitor:"+id+":")
	})
}

func existingVisitor(c *gin.Context) (string, bool) {
	v, err := c.Cookie(VisitorCookie)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// pendingVisitorStore is the empty store of a visitor without an id. The
// first Set issues the id and opens the real store.
type pendingVisitorStore struct {
	c     *gin.Context
	opts  storage.CookieOptions
	open  func(ctx context.Context, visitorID string) storage.Store
	inner storage.Store
}

func (p *pendingVisitorStore) Get(key string) (string, bool, error) {
	if p.inner == nil {
		return "", false, nil
	}
	return p.inner.Get(key)
}

func (p *pendingVisitorStore) Set(key, value string) error {
	if p.inner == nil {
		p.inner = p.open(p.c.Request.Context(), issueVisitor(p.c, p.opts))
	}
	return p.inner.Set(key, value)
}

func (p *pendingVisitorStore) Remove(key string) error {
	if p.inner == nil {
		return nil
	}
	return p.inner.Remove(key)
}

func (p *pendingVisitorStore) Keys() ([]string, error) {
	if p.inner == nil {
		return nil, nil
	}
	return p.inner.Keys()
}

func issueVisitor(c *gin.Context, opts storage.CookieOptions) string {
	id := uuid.NewString()
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     VisitorCookie,
		Value:    id,
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   int(opts.MaxAge / time.Second),
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	// Later reads in this request must see the same visitor.
	c.Request.AddCookie(&http.Cookie{Name: VisitorCookie, Value: id})
	return id
}

// storeFor returns the store bound to this request, creating it once.
func (s *Server) storeFor(c *gin.Context) (storage.Store, error) {
	if v, ok := c.Get(ctxKeyStore); ok {
		return v.(storage.Store), nil
	}
	st, err := s.stores(c)
	if err != nil {
		return nil, err
	}
	c.Set(ctxKeyStore, st)
	return st, nil
}
