// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
	"github.com/ivanlelis-27/amesco-plus-be/pkg/errutil"
)

func validRequest() auth.RegisterRequest {
	return auth.RegisterRequest{
		Email:           "ana@example.com",
		Password:        "Secret1!",
		ConfirmPassword: "Secret1!",
		FirstName:       "Ana",
		LastName:        "Cruz",
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*auth.RegisterRequest)
		wantCode string
		field    string
	}{
		{"valid", func(*auth.RegisterRequest) {}, "", ""},
		{"bad email", func(r *auth.RegisterRequest) { r.Email = "x" }, auth.CodeInvalidEmail, "email"},
		{"no password", func(r *auth.RegisterRequest) { r.Password, r.ConfirmPassword = "", "" }, auth.CodeMissingField, "password"},
		{"mismatch", func(r *auth.RegisterRequest) { r.ConfirmPassword = "other" }, auth.CodePasswordMismatch, "confirmPassword"},
		{"no first name", func(r *auth.RegisterRequest) { r.FirstName = " " }, auth.CodeMissingField, "firstName"},
		{"no last name", func(r *auth.RegisterRequest) { r.LastName = "" }, auth.CodeMissingField, "lastName"},
		{"member id too long", func(r *auth.RegisterRequest) { r.MemberID = string(make([]byte, 65)) }, auth.CodeInvalidRequest, "memberId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			errutil.AssertErrorCode(t, err, tt.wantCode)
			errutil.AssertErrorContext(t, err, "field", tt.field)
		})
	}
}

func TestRegister(t *testing.T) {
	t.Run("creates user membership and balance", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t)

		f.users.On("EmailExists", mock.Anything, "ana@example.com").Return(false, nil)
		f.hasher.On("Hash", "Secret1!").Return("hash", nil)
		f.memberships.On("ListMemberIDs", mock.Anything).Return([]string{"111111111-1", "222222222-2", "333333333-5"}, nil)
		f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *auth.User) bool {
			return u.Email == "ana@example.com" && u.PasswordHash == "hash"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*auth.User).ID = 41
		}).Return(nil)
		f.memberships.On("Create", mock.Anything, mock.MatchedBy(func(m *auth.Membership) bool {
			return m.UserID == 41 && memberIDPattern.MatchString(m.MemberID) && auth.MemberSuffix(m.MemberID) == 6
		})).Return(nil)
		f.points.On("Open", mock.Anything, mock.AnythingOfType("string")).Return(nil)

		reg, err := svc.Register(context.Background(), validRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(41), reg.UserID)
		assert.Equal(t, 6, auth.MemberSuffix(reg.MemberID))
		assert.Equal(t, 1, f.tx.calls)
	})

	t.Run("supplied member id is used verbatim", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t)
		req := validRequest()
		req.MemberID = "AMS-0007"

		f.users.On("EmailExists", mock.Anything, req.Email).Return(false, nil)
		f.hasher.On("Hash", req.Password).Return("hash", nil)
		f.users.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.memberships.On("Create", mock.Anything, mock.MatchedBy(func(m *auth.Membership) bool {
			return m.MemberID == "AMS-0007"
		})).Return(nil)
		f.points.On("Open", mock.Anything, "AMS-0007").Return(nil)

		reg, err := svc.Register(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "AMS-0007", reg.MemberID)
		f.memberships.AssertNotCalled(t, "ListMemberIDs", mock.Anything)
	})

	t.Run("email already registered", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t)
		f.users.On("EmailExists", mock.Anything, "ana@example.com").Return(true, nil)

		_, err := svc.Register(context.Background(), validRequest())
		errutil.AssertErrorCode(t, err, auth.CodeEmailTaken)
		errutil.AssertErrorKind(t, err, auth.KindConflict)
	})

	t.Run("validation happens before storage", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t)
		req := validRequest()
		req.ConfirmPassword = "nope"

		_, err := svc.Register(context.Background(), req)
		errutil.AssertErrorCode(t, err, auth.CodePasswordMismatch)
	})

	t.Run("generated member id collision is retried", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t, auth.WithMemberIDRetries(3, time.Millisecond))

		f.users.On("EmailExists", mock.Anything, mock.Anything).Return(false, nil)
		f.hasher.On("Hash", mock.Anything).Return("hash", nil)
		f.memberships.On("ListMemberIDs", mock.Anything).Return([]string{"111111111-1"}, nil).Twice()
		f.users.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()
		f.memberships.On("Create", mock.Anything, mock.Anything).
			Return(oops.Code(auth.CodeMemberIDTaken).Errorf("member id already exists")).Once()
		f.memberships.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		f.points.On("Open", mock.Anything, mock.Anything).Return(nil).Once()

		_, err := svc.Register(context.Background(), validRequest())
		require.NoError(t, err)
		assert.Equal(t, 2, f.tx.calls)
	})

	t.Run("supplied member id collision is a conflict", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t, auth.WithMemberIDRetries(3, time.Millisecond))
		req := validRequest()
		req.MemberID = "AMS-0007"

		f.users.On("EmailExists", mock.Anything, mock.Anything).Return(false, nil)
		f.hasher.On("Hash", mock.Anything).Return("hash", nil)
		f.users.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		f.memberships.On("Create", mock.Anything, mock.Anything).
			Return(oops.Code(auth.CodeMemberIDTaken).Errorf("member id already exists")).Once()

		_, err := svc.Register(context.Background(), req)
		errutil.AssertErrorCode(t, err, auth.CodeMemberIDTaken)
		errutil.AssertErrorKind(t, err, auth.KindConflict)
		assert.Equal(t, 1, f.tx.calls)
	})

	t.Run("storage failure is internal", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t)

		f.users.On("EmailExists", mock.Anything, mock.Anything).Return(false, nil)
		f.hasher.On("Hash", mock.Anything).Return("hash", nil)
		f.memberships.On("ListMemberIDs", mock.Anything).Return(nil, nil)
		f.users.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

		_, err := svc.Register(context.Background(), validRequest())
		errutil.AssertErrorCode(t, err, "AUTH_REGISTER_FAILED")
		assert.Equal(t, auth.KindInternal, auth.KindOf(err))
	})
}

func TestGenerateMemberID(t *testing.T) {
	t.Run("next suffix", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t)
		f.memberships.On("ListMemberIDs", mock.Anything).Return([]string{"111111111-1", "222222222-2", "333333333-5"}, nil)

		id, err := svc.GenerateMemberID(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, memberIDPattern, id)
		assert.Equal(t, 6, auth.MemberSuffix(id))
	})

	t.Run("first member", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t)
		f.memberships.On("ListMemberIDs", mock.Anything).Return([]string{}, nil)

		id, err := svc.GenerateMemberID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, auth.MemberSuffix(id))
	})

	t.Run("repository failure", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t)
		f.memberships.On("ListMemberIDs", mock.Anything).Return(nil, errors.New("db down"))

		_, err := svc.GenerateMemberID(context.Background())
		errutil.AssertErrorCode(t, err, "AUTH_MEMBER_ID_FAILED")
	})
}
