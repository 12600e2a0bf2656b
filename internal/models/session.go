package models

import (
	"encoding/base64"
	"time"
)

// Session is the durable envelope persisted between invocations. State is
// the opaque credential blob exported by the platform boundary; nothing
// outside that boundary looks inside it.
type Session struct {
	Version     int       `json:"version,omitempty" yaml:"version"`
	Username    string    `json:"username" yaml:"username"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	ValidatedAt time.Time `json:"validated_at" yaml:"validated_at"`
	State       string    `json:"state,omitempty" yaml:"state,flow"`
}

// NewSession wraps a freshly exported credential blob for persistence.
func NewSession(username string, state []byte) Session {
	now := time.Now().UTC()
	return Session{
		Version:     1,
		Username:    username,
		CreatedAt:   now,
		ValidatedAt: now,
		State:       base64.StdEncoding.EncodeToString(state),
	}
}

// IsZero reports the absent session. A session is either usable or absent;
// anything missing its owner or its credential blob counts as absent.
func (s Session) IsZero() bool {
	return len(s.Username) == 0 || len(s.State) == 0
}

// DecodeState returns the raw credential blob handed back to the boundary
// when resuming.
func (s Session) DecodeState() ([]byte, error) {
	return base64.StdEncoding.DecodeString(s.State)
}

// Touch records a successful use of the session.
func (s *Session) Touch() {
	s.ValidatedAt = time.Now().UTC()
}
