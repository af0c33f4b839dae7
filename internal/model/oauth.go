package model

import "time"

// OAuthSession holds the PKCE verifier and state of an authorization
// attempt between opening the browser and receiving the callback. It is
// persisted so it survives a process restart, and consumed exactly once.
type OAuthSession struct {
	CodeVerifier string    `json:"code_verifier" db:"code_verifier"`
	State        string    `json:"state" db:"state"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the session is older than ttl at now.
// A non-positive ttl never expires.
func (s *OAuthSession) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.CreatedAt) > ttl
}
