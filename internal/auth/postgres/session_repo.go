// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
)

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	db DB
}

var _ auth.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Replace deletes every session of the user and inserts session.
// Call it inside Transactor.InTransaction so both statements commit together.
func (r *SessionRepository) Replace(ctx context.Context, session *auth.Session) error {
	q := conn(ctx, r.db)
	if _, err := q.Exec(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, session.UserID); err != nil {
		return oops.Code("SESSION_REPLACE_FAILED").
			With("operation", "delete previous sessions").
			With("user_id", session.UserID).
			Wrap(err)
	}
	_, err := q.Exec(ctx, `
		INSERT INTO user_sessions (session_id, user_id, jwt_token, created_at)
		VALUES ($1, $2, $3, $4)
	`, session.ID, session.UserID, session.Token, session.CreatedAt)
	if err != nil {
		return oops.Code("SESSION_REPLACE_FAILED").
			With("operation", "insert session").
			With("user_id", session.UserID).
			Wrap(err)
	}
	return nil
}

// Exists reports whether sessionID is a session of userID.
func (r *SessionRepository) Exists(ctx context.Context, userID int64, sessionID string) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM user_sessions WHERE user_id = $1 AND session_id = $2)
	`, userID, sessionID).Scan(&exists)
	if err != nil {
		return false, oops.Code("SESSION_EXISTS_FAILED").
			With("operation", "check session").
			With("user_id", userID).
			Wrap(err)
	}
	return exists, nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (*auth.Session, error) {
	var s auth.Session
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT session_id, user_id, jwt_token, created_at FROM user_sessions WHERE session_id = $1
	`, sessionID).Scan(&s.ID, &s.UserID, &s.Token, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "get session by id").
			Wrap(err)
	}
	return &s, nil
}

// DeleteByUserIfCurrent removes all sessions of a user in one statement,
// provided sessionID is still among them.
func (r *SessionRepository) DeleteByUserIfCurrent(ctx context.Context, userID int64, sessionID string) (bool, error) {
	result, err := conn(ctx, r.db).Exec(ctx, `
		DELETE FROM user_sessions
		WHERE user_id = $1
		  AND EXISTS (SELECT 1 FROM user_sessions WHERE user_id = $1 AND session_id = $2)
	`, userID, sessionID)
	if err != nil {
		return false, oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete current sessions").
			With("user_id", userID).
			Wrap(err)
	}
	return result.RowsAffected() > 0, nil
}

// DeleteByUser removes all sessions of a user. Deleting nothing is not an error.
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, userID)
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete sessions by user").
			With("user_id", userID).
			Wrap(err)
	}
	return nil
}
