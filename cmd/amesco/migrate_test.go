// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanlelis-27/amesco-plus-be/internal/store"
	"github.com/ivanlelis-27/amesco-plus-be/pkg/errutil"
)

type fakeMigrator struct {
	calls    []string
	steps    int
	forced   int
	status   *store.Status
	upErr    error
	closeErr error
}

func (m *fakeMigrator) Up() error {
	m.calls = append(m.calls, "up")
	return m.upErr
}

func (m *fakeMigrator) Down() error {
	m.calls = append(m.calls, "down")
	return nil
}

func (m *fakeMigrator) Steps(n int) error {
	m.calls = append(m.calls, "steps")
	m.steps = n
	return nil
}

func (m *fakeMigrator) Force(v int) error {
	m.calls = append(m.calls, "force")
	m.forced = v
	return nil
}

func (m *fakeMigrator) Status() (*store.Status, error) {
	m.calls = append(m.calls, "status")
	return m.status, nil
}

func (m *fakeMigrator) Close() error {
	m.calls = append(m.calls, "close")
	return m.closeErr
}

func runMigrateCmd(t *testing.T, m *fakeMigrator, args ...string) (string, error) {
	t.Helper()
	var gotURL string
	cmd := newMigrateCmd(&MigrateDeps{
		MigratorFactory: func(url string) (Migrator, error) {
			gotURL = url
			return m, nil
		},
		DatabaseURLGetter: func(*cobra.Command) (string, error) {
			return "postgres://test@localhost/amesco", nil
		},
	})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if len(m.calls) > 0 {
		assert.Equal(t, "postgres://test@localhost/amesco", gotURL)
	}
	return buf.String(), err
}

func TestMigrate_DefaultRunsUp(t *testing.T) {
	m := &fakeMigrator{}
	out, err := runMigrateCmd(t, m)
	require.NoError(t, err)
	assert.Equal(t, []string{"up", "close"}, m.calls)
	assert.Contains(t, out, "Migrations completed successfully")
}

func TestMigrate_UpErrorStillCloses(t *testing.T) {
	m := &fakeMigrator{upErr: errors.New("syntax error at or near")}
	_, err := runMigrateCmd(t, m, "up")
	errutil.AssertErrorCode(t, err, "MIGRATION_FAILED")
	assert.Equal(t, []string{"up", "close"}, m.calls)
}

func TestMigrate_CloseErrorReported(t *testing.T) {
	m := &fakeMigrator{closeErr: errors.New("close failed")}
	_, err := runMigrateCmd(t, m, "up")
	require.EqualError(t, err, "close failed")
}

func TestMigrate_DownRequiresConfirmation(t *testing.T) {
	m := &fakeMigrator{}
	_, err := runMigrateCmd(t, m, "down")
	errutil.AssertErrorCode(t, err, "CONFIRMATION_REQUIRED")
	assert.Empty(t, m.calls)

	out, err := runMigrateCmd(t, m, "down", "--yes")
	require.NoError(t, err)
	assert.Equal(t, []string{"down", "close"}, m.calls)
	assert.Contains(t, out, "rolled back")
}

func TestMigrate_Steps(t *testing.T) {
	m := &fakeMigrator{}
	_, err := runMigrateCmd(t, m, "steps", "--", "-2")
	require.NoError(t, err)
	assert.Equal(t, -2, m.steps)
}

func TestMigrate_Force(t *testing.T) {
	m := &fakeMigrator{}
	out, err := runMigrateCmd(t, m, "force", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, m.forced)
	assert.Contains(t, out, "Forced version 3")
}

func TestMigrate_Status(t *testing.T) {
	m := &fakeMigrator{status: &store.Status{
		Current: 2,
		Dirty:   true,
		Applied: []store.Migration{{Version: 1, Name: "000001_users"}, {Version: 2, Name: "000002_memberships"}},
		Pending: []store.Migration{{Version: 3, Name: "000003_sessions"}},
	}}
	out, err := runMigrateCmd(t, m, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 2 (dirty)")
	assert.Contains(t, out, "[applied] 000001_users")
	assert.Contains(t, out, "[pending] 000003_sessions")
	assert.Contains(t, out, "migrate force")
}

func TestMigrate_FactoryError(t *testing.T) {
	cmd := newMigrateCmd(&MigrateDeps{
		MigratorFactory: func(string) (Migrator, error) { return nil, errors.New("bad url") },
		DatabaseURLGetter: func(*cobra.Command) (string, error) {
			return "mysql://nope", nil
		},
	})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"status"})

	err := cmd.Execute()
	errutil.AssertErrorCode(t, err, "MIGRATION_FAILED")
	errutil.AssertErrorContext(t, err, "operation", "create migrator")
}

func TestParseVersionArg(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "valid integer", input: "3", want: 3},
		{name: "zero", input: "0", want: 0},
		{name: "negative", input: "-1", want: -1},
		{name: "leading whitespace", input: "  42", want: 42},
		{name: "non-numeric", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVersionArg(tt.input)
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, "INVALID_VERSION")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
