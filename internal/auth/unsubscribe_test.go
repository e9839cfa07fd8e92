// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
	"github.com/ivanlelis-27/amesco-plus-be/pkg/errutil"
)

func TestUnsubscribe(t *testing.T) {
	claims := &auth.Claims{UserID: 21, SessionID: "sid"}
	session := &auth.Session{ID: "sid", UserID: 21, Token: "tok"}
	membership := &auth.Membership{MemberID: "123456789-3", UserID: 21}

	authenticated := func(f *serviceFixture) {
		f.tokens.On("Verify", "tok").Return(claims, nil)
		f.sessions.On("Exists", mock.Anything, int64(21), "sid").Return(true, nil)
	}

	t.Run("deletes everything in one transaction", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t)
		authenticated(f)
		f.sessions.On("GetByID", mock.Anything, "sid").Return(session, nil)
		f.memberships.On("GetByUserID", mock.Anything, int64(21)).Return(membership, nil)
		f.points.On("Delete", mock.Anything, "123456789-3").Return(nil)
		f.sessions.On("DeleteByUser", mock.Anything, int64(21)).Return(nil)
		f.memberships.On("DeleteByUserID", mock.Anything, int64(21)).Return(nil)
		f.users.On("Delete", mock.Anything, int64(21)).Return(nil)

		require.NoError(t, svc.Unsubscribe(context.Background(), 21, "tok"))
		require.Equal(t, 1, f.tx.calls)
	})

	t.Run("token for another account", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t)
		authenticated(f)

		err := svc.Unsubscribe(context.Background(), 99, "tok")
		errutil.AssertErrorCode(t, err, auth.CodeSessionInvalid)
	})

	t.Run("stored token differs", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t)
		authenticated(f)
		f.sessions.On("GetByID", mock.Anything, "sid").Return(&auth.Session{ID: "sid", UserID: 21, Token: "other"}, nil)

		err := svc.Unsubscribe(context.Background(), 21, "tok")
		errutil.AssertErrorCode(t, err, auth.CodeSessionInvalid)
	})

	t.Run("no membership", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t)
		authenticated(f)
		f.sessions.On("GetByID", mock.Anything, "sid").Return(session, nil)
		f.memberships.On("GetByUserID", mock.Anything, int64(21)).Return(nil, auth.ErrNotFound)

		err := svc.Unsubscribe(context.Background(), 21, "tok")
		errutil.AssertErrorCode(t, err, auth.CodeMembershipNotFound)
	})

	t.Run("delete failure", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t)
		authenticated(f)
		f.sessions.On("GetByID", mock.Anything, "sid").Return(session, nil)
		f.memberships.On("GetByUserID", mock.Anything, int64(21)).Return(membership, nil)
		f.points.On("Delete", mock.Anything, "123456789-3").Return(errors.New("db down"))

		err := svc.Unsubscribe(context.Background(), 21, "tok")
		errutil.AssertErrorCode(t, err, "AUTH_UNSUBSCRIBE_FAILED")
		errutil.AssertErrorContext(t, err, "operation", "delete points")
	})
}
