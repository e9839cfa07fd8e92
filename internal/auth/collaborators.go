// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package auth

import (
	"context"
	"time"
)

// Claims is the fixed claim set carried by an access token.
type Claims struct {
	UserID    int64
	Email     string
	FirstName string
	LastName  string
	Mobile    string
	MemberID  string
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec issues and verifies signed access tokens.
type TokenCodec interface {
	// Issue signs claims with the given lifetime.
	Issue(claims Claims, expiry time.Duration) (string, error)

	// Verify checks the signature and expiry of token and returns its claims.
	Verify(token string) (*Claims, error)
}

// PointsLedger holds point balances keyed by member identifier.
type PointsLedger interface {
	// Open creates a zero balance for memberID.
	Open(ctx context.Context, memberID string) error

	// FindBalance returns the balance of memberID and whether a row exists.
	FindBalance(ctx context.Context, memberID string) (float64, bool, error)

	// Delete removes every ledger row of memberID.
	Delete(ctx context.Context, memberID string) error
}

// EmailSender delivers an HTML email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Transactor runs fn in a single database transaction.
// Repositories called with the ctx passed to fn join that transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ResetThrottle limits how often password resets can be requested per key.
type ResetThrottle interface {
	// Allow records an attempt for key and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (bool, error)
}
