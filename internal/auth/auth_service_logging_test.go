// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
	"github.com/ivanlelis-27/amesco-plus-be/internal/auth/mocks"
)

// captureLogger returns a JSON logger writing to the returned buffer.
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// findLogEntry returns the first JSON log line whose msg contains substr.
func findLogEntry(t *testing.T, buf *bytes.Buffer, substr string) map[string]any {
	t.Helper()
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if msg, _ := entry["msg"].(string); strings.Contains(msg, substr) {
			return entry
		}
	}
	t.Fatalf("no log entry containing %q in:\n%s", substr, buf.String())
	return nil
}

func TestLoginLogsRehashFailure(t *testing.T) {
	logger, buf := captureLogger()
	f := newFixture(t)
	svc := f.service(t, auth.WithLogger(logger))

	user := &auth.User{ID: 3, Email: "ana@example.com", PasswordHash: auth.LegacyDigest("pw"), FirstName: "Ana", LastName: "Cruz"}
	f.users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	f.hasher.On("Verify", "pw", user.PasswordHash).Return(true, nil)
	f.hasher.On("NeedsUpgrade", user.PasswordHash).Return(true)
	f.hasher.On("Hash", "pw").Return("new-hash", nil)
	f.users.On("UpdatePassword", mock.Anything, int64(3), "new-hash").Return(errors.New("write failed"))
	f.memberships.On("GetByUserID", mock.Anything, int64(3)).Return(nil, auth.ErrNotFound)
	f.tokens.On("Issue", mock.Anything, mock.Anything).Return("tok", nil)
	f.sessions.On("Replace", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Login(context.Background(), user.Email, "pw")
	require.NoError(t, err, "rehash failure must not fail the login")

	entry := findLogEntry(t, buf, "best-effort password rehash")
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "rehash_password", entry["operation"])
	assert.Equal(t, "write failed", entry["error"])
}

func TestForgotPasswordLogsSendFailure(t *testing.T) {
	logger, buf := captureLogger()
	f := newFixture(t)
	svc := f.service(t, auth.WithLogger(logger))

	user := &auth.User{ID: 3, Email: "ana@example.com", FirstName: "Ana", LastName: "Cruz"}
	f.users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	f.hasher.On("Hash", mock.Anything).Return("temp-hash", nil)
	f.users.On("UpdatePassword", mock.Anything, int64(3), "temp-hash").Return(nil)
	f.mailer.On("Send", mock.Anything, user.Email, auth.PasswordResetSubject, mock.Anything).
		Return(errors.New("smtp unavailable"))

	require.NoError(t, svc.ForgotPassword(context.Background(), user.Email))

	entry := findLogEntry(t, buf, "best-effort temporary password email")
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "send_temp_password", entry["operation"])
	assert.Equal(t, "smtp unavailable", entry["error"])
}

func TestForgotPasswordLogsThrottleFailure(t *testing.T) {
	logger, buf := captureLogger()
	f := newFixture(t)
	throttle := mocks.NewMockResetThrottle(t)
	svc := f.service(t, auth.WithLogger(logger), auth.WithResetThrottle(throttle))

	throttle.On("Allow", mock.Anything, "forgot:ana@example.com").Return(false, errors.New("redis down"))
	f.users.On("GetByEmail", mock.Anything, "Ana@Example.com").Return(nil, auth.ErrNotFound)

	require.NoError(t, svc.ForgotPassword(context.Background(), "Ana@Example.com"))

	entry := findLogEntry(t, buf, "best-effort reset throttle")
	assert.Equal(t, "reset_throttle", entry["operation"])
}
