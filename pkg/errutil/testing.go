// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
)

// AssertErrorCode asserts that err is an oops error with the given code.
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	assert.Equal(t, code, oopsErr.Code())
}

// AssertErrorContext asserts that err is an oops error with the given context key/value.
func AssertErrorContext(t *testing.T, err error, key string, value any) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	ctx := oopsErr.Context()
	require.Contains(t, ctx, key)
	assert.EqualValues(t, value, ctx[key])
}

// AssertErrorKind asserts that err classifies as kind, the value the HTTP
// layer maps to a status.
func AssertErrorKind(t *testing.T, err error, kind auth.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind.String(), auth.KindOf(err).String(), "error: %v", err)
}

// AssertContextOmits asserts that none of keys appear in the oops context of
// err, so secrets such as passwords and hashes never reach the logs.
func AssertContextOmits(t *testing.T, err error, keys ...string) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	ctx := oopsErr.Context()
	for _, key := range keys {
		assert.NotContains(t, ctx, key)
	}
}
