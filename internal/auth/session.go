// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"time"

	"github.com/samber/oops"
)

// SessionIDBytes is the entropy of a session identifier (32 URL-safe base64 chars).
const SessionIDBytes = 24

// Session is one active login. At most one exists per user.
type Session struct {
	ID        string
	UserID    int64
	Token     string
	CreatedAt time.Time
}

// NewSession creates a validated Session for an issued token.
func NewSession(id string, userID int64, token string) (*Session, error) {
	if id == "" {
		return nil, oops.Code("SESSION_INVALID_ID").Errorf("session id cannot be empty")
	}
	if userID <= 0 {
		return nil, oops.Code("SESSION_INVALID_USER").With("user_id", userID).Errorf("user id must be positive")
	}
	if token == "" {
		return nil, oops.Code("SESSION_INVALID_TOKEN").Errorf("token cannot be empty")
	}
	return &Session{
		ID:        id,
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// MatchesToken reports whether token is the artifact issued for this session.
func (s *Session) MatchesToken(token string) bool {
	if s.Token == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.Token), []byte(token)) == 1
}

// GenerateSessionID returns a cryptographically random URL-safe identifier.
func GenerateSessionID() (string, error) {
	b := make([]byte, SessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", oops.Code("SESSION_ID_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionIDBytes).
			Wrap(err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Replace deletes every session of session.UserID and stores session.
	// Callers run it inside a transaction so no reader sees both generations.
	Replace(ctx context.Context, session *Session) error

	// Exists reports whether a session with this exact user and id exists.
	Exists(ctx context.Context, userID int64, sessionID string) (bool, error)

	// GetByID retrieves a session by id, or ErrNotFound.
	GetByID(ctx context.Context, sessionID string) (*Session, error)

	// DeleteByUser removes all sessions of a user. Deleting none is not an error.
	DeleteByUser(ctx context.Context, userID int64) error

	// DeleteByUserIfCurrent removes all sessions of a user only while
	// sessionID is still one of them, and reports whether it did.
	DeleteByUserIfCurrent(ctx context.Context, userID int64, sessionID string) (bool, error)
}
