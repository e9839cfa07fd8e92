// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Unsubscribe deletes the account of userID. presentedToken must be the
// token of the user's current session. Points, sessions, membership and the
// user row are removed in one transaction.
func (s *Service) Unsubscribe(ctx context.Context, userID int64, presentedToken string) (err error) {
	ctx, span := tracer.Start(ctx, "auth.unsubscribe", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer func() { endSpan(span, err) }()

	claims, err := s.Authenticate(ctx, presentedToken)
	if err != nil {
		return err
	}
	if claims.UserID != userID {
		return oops.Code(CodeSessionInvalid).
			With("user_id", userID).
			Errorf("token does not belong to this account")
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeSessionInvalid).With("user_id", userID).Errorf("session expired or logged in elsewhere")
		}
		return oops.Code("AUTH_UNSUBSCRIBE_FAILED").With("operation", "get session").Wrap(err)
	}
	if !session.MatchesToken(presentedToken) {
		return oops.Code(CodeSessionInvalid).With("user_id", userID).Errorf("session expired or logged in elsewhere")
	}

	membership, err := s.memberships.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeMembershipNotFound).With("user_id", userID).Errorf("membership not found")
		}
		return oops.Code("AUTH_UNSUBSCRIBE_FAILED").With("operation", "get membership").Wrap(err)
	}

	err = s.tx.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.points.Delete(txCtx, membership.MemberID); err != nil {
			return oops.With("operation", "delete points").Wrap(err)
		}
		if err := s.sessions.DeleteByUser(txCtx, userID); err != nil {
			return oops.With("operation", "delete sessions").Wrap(err)
		}
		if err := s.memberships.DeleteByUserID(txCtx, userID); err != nil {
			return oops.With("operation", "delete membership").Wrap(err)
		}
		if err := s.users.Delete(txCtx, userID); err != nil {
			return oops.With("operation", "delete user").Wrap(err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeUserNotFound).With("user_id", userID).Errorf("user not found")
		}
		return oops.Code("AUTH_UNSUBSCRIBE_FAILED").
			With("user_id", userID).
			With("member_id", membership.MemberID).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "account deleted", "user_id", userID, "member_id", membership.MemberID)
	return nil
}
