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

// PointsLedger implements auth.PointsLedger on the points table.
type PointsLedger struct {
	db DB
}

var _ auth.PointsLedger = (*PointsLedger)(nil)

// NewPointsLedger creates a new PointsLedger.
func NewPointsLedger(db DB) *PointsLedger {
	return &PointsLedger{db: db}
}

// Open creates a zero balance for memberID.
func (l *PointsLedger) Open(ctx context.Context, memberID string) error {
	_, err := conn(ctx, l.db).Exec(ctx, `
		INSERT INTO points (member_id, points_balance, updated_at)
		VALUES ($1, 0, NOW())
	`, memberID)
	if err != nil {
		return oops.Code("POINTS_OPEN_FAILED").
			With("operation", "insert points").
			With("member_id", memberID).
			Wrap(err)
	}
	return nil
}

// FindBalance returns the balance of memberID and whether a row exists.
func (l *PointsLedger) FindBalance(ctx context.Context, memberID string) (float64, bool, error) {
	var balance float64
	err := conn(ctx, l.db).QueryRow(ctx,
		`SELECT points_balance::float8 FROM points WHERE member_id = $1`, memberID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, oops.Code("POINTS_GET_FAILED").
			With("operation", "get balance").
			With("member_id", memberID).
			Wrap(err)
	}
	return balance, true, nil
}

// Delete removes the balance row of memberID. A missing row is not an error.
func (l *PointsLedger) Delete(ctx context.Context, memberID string) error {
	_, err := conn(ctx, l.db).Exec(ctx, `DELETE FROM points WHERE member_id = $1`, memberID)
	if err != nil {
		return oops.Code("POINTS_DELETE_FAILED").
			With("operation", "delete points").
			With("member_id", memberID).
			Wrap(err)
	}
	return nil
}
