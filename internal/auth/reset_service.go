// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/samber/oops"
)

// PasswordResetSubject is the subject of the temporary password email.
const PasswordResetSubject = "Your Temporary Password"

// ForgotPassword replaces the password of the account registered to email
// with a temporary one and emails it. The result is the same whether or not
// the account exists. Email delivery is best-effort.
func (s *Service) ForgotPassword(ctx context.Context, email string) (err error) {
	ctx, span := tracer.Start(ctx, "auth.forgot_password")
	defer func() { endSpan(span, err) }()

	if err := ValidateEmail(email); err != nil {
		return err
	}
	email = strings.TrimSpace(email)

	if s.throttle != nil {
		allowed, throttleErr := s.throttle.Allow(ctx, "forgot:"+strings.ToLower(email))
		switch {
		case throttleErr != nil:
			s.logger.WarnContext(ctx, "best-effort reset throttle check failed",
				"operation", "reset_throttle",
				"error", throttleErr.Error())
		case !allowed:
			return oops.Code(CodeThrottled).Errorf("too many password reset requests, try again later")
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.DebugContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return oops.Code("AUTH_FORGOT_PASSWORD_FAILED").With("operation", "get user by email").Wrap(err)
	}

	tempPassword, err := GenerateTempPassword(DefaultTempPasswordLength)
	if err != nil {
		return oops.Code("AUTH_FORGOT_PASSWORD_FAILED").With("operation", "generate temp password").Wrap(err)
	}
	hash, err := s.hasher.Hash(tempPassword)
	if err != nil {
		return oops.Code("AUTH_FORGOT_PASSWORD_FAILED").With("operation", "hash temp password").Wrap(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return oops.Code("AUTH_FORGOT_PASSWORD_FAILED").
			With("operation", "update password").
			With("user_id", user.ID).
			Wrap(err)
	}

	body := temporaryPasswordBody(user.FirstName, tempPassword)
	if err := s.mailer.Send(ctx, user.Email, PasswordResetSubject, body); err != nil {
		s.logger.WarnContext(ctx, "best-effort temporary password email failed",
			"operation", "send_temp_password",
			"user_id", user.ID,
			"error", err.Error())
	}
	return nil
}

func temporaryPasswordBody(firstName, tempPassword string) string {
	return fmt.Sprintf(`<html><body>
<p>Hello %s,</p>
<p>You requested a password reset for your Amesco account. Use the temporary password below to log in, then change it as soon as possible.</p>
<p><strong>%s</strong></p>
<p>If you did not request this, please ignore this email or contact support.</p>
</body></html>`, html.EscapeString(firstName), html.EscapeString(tempPassword))
}

// ResetPassword sets a new password for the account registered to email.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) (err error) {
	ctx, span := tracer.Start(ctx, "auth.reset_password")
	defer func() { endSpan(span, err) }()

	if err := ValidateEmail(email); err != nil {
		return err
	}
	if newPassword == "" {
		return oops.Code(CodeEmptyPassword).With("field", "newPassword").Errorf("new password cannot be empty")
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeUserNotFound).Errorf("user not found")
		}
		return oops.Code("AUTH_RESET_PASSWORD_FAILED").With("operation", "get user by email").Wrap(err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("AUTH_RESET_PASSWORD_FAILED").With("operation", "hash password").Wrap(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeUserNotFound).With("user_id", user.ID).Errorf("user not found")
		}
		return oops.Code("AUTH_RESET_PASSWORD_FAILED").
			With("operation", "update password").
			With("user_id", user.ID).
			Wrap(err)
	}
	return nil
}
