// Package session owns the locally persisted authentication session and the
// per-conversation correlation id. Stores are explicit, injectable objects
// with atomic get/set/clear semantics so callers never touch ambient storage
// directly.
package session

import "time"

// User is an immutable snapshot from the auth provider, replaced wholesale
// on refresh.
type User struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Name       string   `json:"name,omitempty"`
	Department string   `json:"department,omitempty"`
	Roles      []string `json:"roles,omitempty"`
}

// Session is the persisted authentication state. ExpiresAt is epoch
// milliseconds.
type Session struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresAt    int64  `json:"expiresAt"`
	User         User   `json:"user"`
}

// Expired reports whether the session's expiry has passed.
func (s *Session) Expired() bool {
	return time.Now().UnixMilli() >= s.ExpiresAt
}

// ExpiresWithin reports whether the session expires within d. Used for the
// refresh-ahead window.
func (s *Session) ExpiresWithin(d time.Duration) bool {
	return time.Until(time.UnixMilli(s.ExpiresAt)) < d
}

// Store persists at most one Session. Implementations replace the record
// atomically; there are no partial writes. Get returns (nil, nil) when no
// session is stored or the stored session has expired.
type Store interface {
	Get() (*Session, error)
	Set(*Session) error
	Clear() error
}
