// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package auth

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Member identifier layout: {memberSeriesDigits random digits}-{suffix}.
const (
	memberSeriesDigits = 9
	memberIDDelimiter  = "-"

	// MaxMemberIDLength bounds caller-supplied member identifiers.
	MaxMemberIDLength = 64
)

// Membership links a user to its externally visible member identifier.
type Membership struct {
	MemberID  string
	UserID    int64
	CreatedAt time.Time
}

// MemberSuffix returns the sequence suffix of a member identifier.
// Identifiers without a delimiter or with a non-numeric suffix yield 0.
func MemberSuffix(memberID string) int {
	_, suffix, found := strings.Cut(memberID, memberIDDelimiter)
	if !found {
		return 0
	}
	// Only the segment directly after the first delimiter counts.
	suffix, _, _ = strings.Cut(suffix, memberIDDelimiter)
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// NextMemberSuffix returns one more than the largest suffix in memberIDs,
// or 1 when there are none.
func NextMemberSuffix(memberIDs []string) int {
	highest := 0
	for _, id := range memberIDs {
		if s := MemberSuffix(id); s > highest {
			highest = s
		}
	}
	return highest + 1
}

// NewMemberID builds a member identifier from a fresh random series and suffix.
func NewMemberID(suffix int) (string, error) {
	if suffix < 1 {
		return "", oops.Code(CodeInvalidRequest).With("suffix", suffix).Errorf("member suffix must be positive")
	}
	var b strings.Builder
	b.Grow(memberSeriesDigits + 1 + 10)
	ten := big.NewInt(10)
	for range memberSeriesDigits {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", oops.Code("AUTH_RANDOM_FAILED").With("operation", "member series").Wrap(err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	b.WriteString(memberIDDelimiter)
	b.WriteString(strconv.Itoa(suffix))
	return b.String(), nil
}

// ValidateMemberID checks a caller-supplied member identifier.
func ValidateMemberID(memberID string) error {
	if strings.TrimSpace(memberID) == "" {
		return missingField("memberId")
	}
	if len(memberID) > MaxMemberIDLength {
		return oops.Code(CodeInvalidRequest).
			With("field", "memberId").
			With("max", MaxMemberIDLength).
			Errorf("memberId must be at most %d characters", MaxMemberIDLength)
	}
	return nil
}

// MembershipRepository manages membership persistence.
type MembershipRepository interface {
	// Create stores a membership.
	// Returns an AUTH_MEMBER_ID_TAKEN error if the member id already exists.
	Create(ctx context.Context, membership *Membership) error

	// GetByUserID returns the membership of a user, or ErrNotFound.
	GetByUserID(ctx context.Context, userID int64) (*Membership, error)

	// ListMemberIDs returns every member identifier.
	ListMemberIDs(ctx context.Context) ([]string, error)

	// DeleteByUserID removes the membership of a user.
	DeleteByUserID(ctx context.Context, userID int64) error
}
