// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package auth

import (
	"context"
	"strings"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/attribute"
)

// RegisterRequest carries the fields of a new account.
// MemberID and Mobile are optional.
type RegisterRequest struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Mobile          *string
	MemberID        string
}

// Validate checks the request before any storage access.
func (r RegisterRequest) Validate() error {
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return missingField("password")
	}
	if r.Password != r.ConfirmPassword {
		return oops.Code(CodePasswordMismatch).With("field", "confirmPassword").Errorf("passwords do not match")
	}
	if strings.TrimSpace(r.FirstName) == "" {
		return missingField("firstName")
	}
	if strings.TrimSpace(r.LastName) == "" {
		return missingField("lastName")
	}
	if r.MemberID != "" {
		return ValidateMemberID(r.MemberID)
	}
	return nil
}

// Registration identifies a newly created account.
type Registration struct {
	UserID   int64
	Email    string
	MemberID string
}

// Register creates a user, its membership and a zero point balance in one
// transaction. A generated member id that collides with a concurrent
// registration is regenerated; a supplied one is reported as a conflict.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (_ *Registration, err error) {
	ctx, span := tracer.Start(ctx, "auth.register")
	defer func() { endSpan(span, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").With("operation", "check email").Wrap(err)
	}
	if exists {
		return nil, oops.Code(CodeEmailTaken).With("field", "email").Errorf("email already registered")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").With("operation", "hash password").Wrap(err)
	}
	template, err := NewUser(req.Email, hash, req.FirstName, req.LastName, req.Mobile)
	if err != nil {
		return nil, err
	}

	generated := strings.TrimSpace(req.MemberID) == ""
	var result *Registration

	attempt := func(ctx context.Context) error {
		memberID := strings.TrimSpace(req.MemberID)
		if generated {
			id, genErr := s.GenerateMemberID(ctx)
			if genErr != nil {
				return genErr
			}
			memberID = id
		}

		user := *template
		user.CreatedAt = s.now().UTC()
		txErr := s.tx.InTransaction(ctx, func(txCtx context.Context) error {
			if err := s.users.Create(txCtx, &user); err != nil {
				return err
			}
			membership := &Membership{MemberID: memberID, UserID: user.ID, CreatedAt: user.CreatedAt}
			if err := s.memberships.Create(txCtx, membership); err != nil {
				return err
			}
			return s.points.Open(txCtx, memberID)
		})
		if txErr != nil {
			if generated && HasCode(txErr, CodeMemberIDTaken) {
				s.logger.InfoContext(ctx, "generated member id collided, retrying", "member_id", memberID)
				return retry.RetryableError(txErr)
			}
			return txErr
		}

		result = &Registration{UserID: user.ID, Email: user.Email, MemberID: memberID}
		return nil
	}

	backoff := retry.WithMaxRetries(s.memberIDRetries, retry.NewConstant(s.memberIDRetryDelay))
	if err := retry.Do(ctx, backoff, attempt); err != nil {
		switch KindOf(err) {
		case KindConflict, KindValidation:
			return nil, err
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").With("operation", "create account").Wrap(err)
	}

	span.SetAttributes(attribute.Int64("user.id", result.UserID))
	return result, nil
}

// GenerateMemberID returns a fresh member identifier whose suffix is one
// more than the highest existing suffix.
func (s *Service) GenerateMemberID(ctx context.Context) (string, error) {
	ids, err := s.memberships.ListMemberIDs(ctx)
	if err != nil {
		return "", oops.Code("AUTH_MEMBER_ID_FAILED").With("operation", "list member ids").Wrap(err)
	}
	id, err := NewMemberID(NextMemberSuffix(ids))
	if err != nil {
		return "", oops.Code("AUTH_MEMBER_ID_FAILED").With("operation", "build member id").Wrap(err)
	}
	return id, nil
}

// BulkSkip records why an entry of a bulk registration was not created.
type BulkSkip struct {
	Index  int
	Email  string
	Reason string
}

// BulkResult summarises a bulk registration.
type BulkResult struct {
	Created []Registration
	Skipped []BulkSkip
}

// BulkRegister registers each entry independently. Entries with invalid
// input or an already registered email are skipped; any other failure stops
// the import and is returned alongside the entries created so far.
// Bulk imports carry existing member ids, so every entry must supply one.
func (s *Service) BulkRegister(ctx context.Context, reqs []RegisterRequest) (*BulkResult, error) {
	result := &BulkResult{
		Created: make([]Registration, 0, len(reqs)),
	}
	for i, req := range reqs {
		if strings.TrimSpace(req.MemberID) == "" {
			result.Skipped = append(result.Skipped, BulkSkip{Index: i, Email: req.Email, Reason: "memberId is required"})
			continue
		}
		if req.ConfirmPassword == "" {
			req.ConfirmPassword = req.Password
		}

		reg, err := s.Register(ctx, req)
		if err != nil {
			switch KindOf(err) {
			case KindValidation, KindConflict:
				result.Skipped = append(result.Skipped, BulkSkip{Index: i, Email: req.Email, Reason: err.Error()})
				continue
			}
			return result, err
		}
		result.Created = append(result.Created, *reg)
	}
	return result, nil
}
