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

// MembershipRepository implements auth.MembershipRepository using PostgreSQL.
type MembershipRepository struct {
	db DB
}

var _ auth.MembershipRepository = (*MembershipRepository)(nil)

// NewMembershipRepository creates a new MembershipRepository.
func NewMembershipRepository(db DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Create stores a membership. A duplicate member id, or a member id whose
// numeric suffix is already in use, is AUTH_MEMBER_ID_TAKEN.
func (r *MembershipRepository) Create(ctx context.Context, m *auth.Membership) error {
	_, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO memberships (member_id, member_seq, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, m.MemberID, memberSeq(m.MemberID), m.UserID, m.CreatedAt)
	if err != nil {
		switch uniqueViolation(err) {
		case constraintMembershipsPK:
			return oops.Code(auth.CodeMemberIDTaken).
				With("member_id", m.MemberID).
				Errorf("member id already exists")
		case constraintMembershipsSeq:
			return oops.Code(auth.CodeMemberIDTaken).
				With("member_id", m.MemberID).
				With("member_seq", auth.MemberSuffix(m.MemberID)).
				Errorf("member id suffix already in use")
		case constraintMembershipsUser:
			return oops.Code("MEMBERSHIP_USER_EXISTS").
				With("user_id", m.UserID).
				Errorf("user already has a membership")
		}
		return oops.Code("MEMBERSHIP_CREATE_FAILED").
			With("operation", "insert membership").
			With("member_id", m.MemberID).
			Wrap(err)
	}
	return nil
}

// memberSeq returns the suffix stored in member_seq, or nil when the id has
// no numeric suffix.
func memberSeq(memberID string) *int64 {
	seq := int64(auth.MemberSuffix(memberID))
	if seq == 0 {
		return nil
	}
	return &seq
}

// GetByUserID returns the membership of a user.
func (r *MembershipRepository) GetByUserID(ctx context.Context, userID int64) (*auth.Membership, error) {
	var m auth.Membership
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT member_id, user_id, created_at FROM memberships WHERE user_id = $1
	`, userID).Scan(&m.MemberID, &m.UserID, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.With("user_id", userID).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("MEMBERSHIP_GET_FAILED").
			With("operation", "get membership by user").
			With("user_id", userID).
			Wrap(err)
	}
	return &m, nil
}

// ListMemberIDs returns every member id.
func (r *MembershipRepository) ListMemberIDs(ctx context.Context) ([]string, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT member_id FROM memberships`)
	if err != nil {
		return nil, oops.Code("MEMBERSHIP_LIST_FAILED").
			With("operation", "list member ids").
			Wrap(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, oops.Code("MEMBERSHIP_LIST_FAILED").
			With("operation", "scan member ids").
			Wrap(err)
	}
	return ids, nil
}

// DeleteByUserID removes the membership of a user.
func (r *MembershipRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	result, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM memberships WHERE user_id = $1`, userID)
	if err != nil {
		return oops.Code("MEMBERSHIP_DELETE_FAILED").
			With("operation", "delete membership").
			With("user_id", userID).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.With("user_id", userID).Wrap(auth.ErrNotFound)
	}
	return nil
}
