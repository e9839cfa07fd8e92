// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package auth

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/samber/oops"
)

// emailRegex requires a local part, an @, and a domain whose last label is
// at least two letters.
var emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// User is a registered member account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string `json:"-"`
	FirstName    string
	LastName     string
	Mobile       *string
	CreatedAt    time.Time
}

// FullName returns "First Last".
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// LogValue keeps the password hash out of structured logs.
func (u *User) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("id", u.ID),
		slog.String("email", u.Email),
	)
}

// NewUser creates a User with validated email and names.
// The password hash must already be computed.
func NewUser(email, passwordHash, firstName, lastName string, mobile *string) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code(CodeMissingField).With("field", "password").Errorf("password hash cannot be empty")
	}
	if strings.TrimSpace(firstName) == "" {
		return nil, missingField("firstName")
	}
	if strings.TrimSpace(lastName) == "" {
		return nil, missingField("lastName")
	}
	if mobile != nil && strings.TrimSpace(*mobile) == "" {
		mobile = nil
	}
	return &User{
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Mobile:       mobile,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// ValidateEmail checks email against the accepted address pattern.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return missingField("email")
	}
	if !emailRegex.MatchString(email) {
		return oops.Code(CodeInvalidEmail).With("field", "email").Errorf("invalid email format")
	}
	return nil
}

func missingField(field string) error {
	return oops.Code(CodeMissingField).With("field", field).Errorf("%s is required", field)
}

// UserRepository manages user persistence.
// Implementations join the transaction carried by ctx, if any.
type UserRepository interface {
	// Create stores a new user and sets its ID.
	// Returns an AUTH_EMAIL_TAKEN error if the email is already registered.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by surrogate ID.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	// Returns ErrNotFound if no user has the given email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// EmailExists reports whether any user has the given email (case-insensitive).
	EmailExists(ctx context.Context, email string) (bool, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// Delete removes a user.
	Delete(ctx context.Context, id int64) error
}
