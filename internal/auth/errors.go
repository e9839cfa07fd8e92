// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
)

// ErrNotFound is returned by repositories when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Error codes attached to oops errors returned by this package.
const (
	CodeInvalidEmail       = "AUTH_INVALID_EMAIL"
	CodePasswordMismatch   = "AUTH_PASSWORD_MISMATCH"
	CodeMissingField       = "AUTH_MISSING_FIELD"
	CodeEmptyPassword      = "AUTH_EMPTY_PASSWORD"
	CodeInvalidRequest     = "AUTH_INVALID_REQUEST"
	CodeEmailTaken         = "AUTH_EMAIL_TAKEN"
	CodeMemberIDTaken      = "AUTH_MEMBER_ID_TAKEN"
	CodeUserNotFound       = "AUTH_USER_NOT_FOUND"
	CodeMembershipNotFound = "AUTH_MEMBERSHIP_NOT_FOUND"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeUnauthenticated    = "AUTH_UNAUTHENTICATED"
	CodeSessionInvalid     = "AUTH_SESSION_INVALID"
	CodeThrottled          = "AUTH_THROTTLED"
	CodeMissingDependency  = "AUTH_MISSING_DEPENDENCY"
	CodeMalformedHash      = "AUTH_MALFORMED_HASH"
)

// Kind classifies an error for callers that need to decide how to surface it.
type Kind int

// Error kinds, from most to least specific. KindInternal is the fallback.
const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindInvalidCredentials
	KindUnauthenticated
	KindSessionInvalid
	KindThrottled
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindSessionInvalid:
		return "session_invalid"
	case KindThrottled:
		return "throttled"
	default:
		return "internal"
	}
}

var kindByCode = map[string]Kind{
	CodeInvalidEmail:       KindValidation,
	CodePasswordMismatch:   KindValidation,
	CodeMissingField:       KindValidation,
	CodeEmptyPassword:      KindValidation,
	CodeInvalidRequest:     KindValidation,
	CodeEmailTaken:         KindConflict,
	CodeMemberIDTaken:      KindConflict,
	CodeUserNotFound:       KindNotFound,
	CodeMembershipNotFound: KindNotFound,
	CodeInvalidCredentials: KindInvalidCredentials,
	CodeUnauthenticated:    KindUnauthenticated,
	CodeSessionInvalid:     KindSessionInvalid,
	CodeThrottled:          KindThrottled,
}

// KindOf returns the Kind of err based on its oops code.
// Errors without a recognised code are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return KindInternal
	}
	code, _ := oopsErr.Code().(string)
	if kind, found := kindByCode[code]; found {
		return kind
	}
	return KindInternal
}

// HasCode reports whether err carries the given oops code.
func HasCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	c, _ := oopsErr.Code().(string)
	return c == code
}
