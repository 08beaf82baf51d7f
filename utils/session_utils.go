package utils

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CookieScope int

const (
	// SessionScope cookies carry no expiry and end with the browser session.
	SessionScope CookieScope = iota
	// DurableScope cookies live for a year.
	DurableScope
)

const durableCookieMaxAge = 365 * 24 * 60 * 60

// CookieStore exposes the client's cookies as a key/value store, so visitor identifiers
// live on the client the same way they would in browser storage.
type CookieStore struct {
	c      *gin.Context
	scope  CookieScope
	secure bool
}

func NewCookieStore(c *gin.Context, scope CookieScope, secure bool) *CookieStore {
	return &CookieStore{c: c, scope: scope, secure: secure}
}

func (s *CookieStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	// A value set earlier in this request wins over the incoming cookie.
	if v, ok := s.c.Get(cookieContextKey(key)); ok {
		return []byte(v.(string)), true, nil
	}
	value, err := s.c.Cookie(key)
	if err != nil || value == "" {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

func (s *CookieStore) Set(_ context.Context, key string, value []byte) error {
	maxAge := 0
	if s.scope == DurableScope {
		maxAge = durableCookieMaxAge
	}
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(key, string(value), maxAge, "/", "", s.secure, true)
	s.c.Set(cookieContextKey(key), string(value))
	return nil
}

func cookieContextKey(key string) string {
	return "cookie:" + key
}
