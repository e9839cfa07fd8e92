// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

// Package auth provides registration, authentication and session management
// for Amesco Plus members.
//
// # Domain Types
//
// User, Membership and Session are created with their constructors
// (NewUser, NewSession) or, for member identifiers, NewMemberID. Repository
// implementations receive pre-validated values.
//
// Stored password hashes come in two generations, classified by ParseHash:
// a legacy unsalted SHA-256 digest and a PBKDF2 "{iterations}.{salt}.{key}"
// string. Legacy hashes are upgraded the first time their owner logs in.
//
// # Sessions
//
// A user has at most one session. Login replaces every previous session, so
// a token issued earlier stops authenticating as soon as a newer login
// commits. Authenticate distinguishes a bad token (AUTH_UNAUTHENTICATED) from
// a superseded session (AUTH_SESSION_INVALID).
//
// # Errors
//
// Errors carry samber/oops codes; KindOf maps them to the error taxonomy used
// by transports.
package auth
