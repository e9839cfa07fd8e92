// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

// Package token issues and verifies HS256 access tokens.
package token

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
)

// MinSecretLength is the shortest accepted signing secret, in bytes.
const MinSecretLength = 32

// claims is the JWT payload. Field names match the tokens issued by the
// previous system so existing clients keep decoding them.
type claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Mobile    string `json:"mobile,omitempty"`
	MemberID  string `json:"memberId,omitempty"`
	SessionID string `json:"sid"`
}

// HMACCodec implements auth.TokenCodec with HMAC-SHA256 signatures.
type HMACCodec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

var _ auth.TokenCodec = (*HMACCodec)(nil)

// NewHMACCodec creates a codec. An empty issuer disables the issuer check.
func NewHMACCodec(secret []byte, issuer string) (*HMACCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, oops.Code("TOKEN_SECRET_TOO_SHORT").
			With("min", MinSecretLength).
			Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	}
	return &HMACCodec{secret: secret, issuer: issuer, now: time.Now}, nil
}

// Issue signs c with the given lifetime.
func (h *HMACCodec) Issue(c auth.Claims, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		return "", oops.Code("TOKEN_INVALID_EXPIRY").With("expiry", expiry.String()).Errorf("token expiry must be positive")
	}
	issuedAt := c.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = h.now()
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(c.UserID, 10),
			Issuer:    h.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(expiry)),
			ID:        c.SessionID,
		},
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Mobile:    c.Mobile,
		MemberID:  c.MemberID,
		SessionID: c.SessionID,
	})

	signed, err := t.SignedString(h.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, expiry and issuer and returns the claims.
func (h *HMACCodec) Verify(tokenString string) (*auth.Claims, error) {
	parsed := &claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(h.now),
	}
	if h.issuer != "" {
		opts = append(opts, jwt.WithIssuer(h.issuer))
	}

	t, err := jwt.ParseWithClaims(tokenString, parsed, func(*jwt.Token) (any, error) {
		return h.secret, nil
	}, opts...)
	if err != nil {
		return nil, oops.Code("TOKEN_INVALID").Wrap(err)
	}
	if !t.Valid {
		return nil, oops.Code("TOKEN_INVALID").Errorf("token is not valid")
	}

	userID, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil {
		return nil, oops.Code("TOKEN_INVALID").With("subject", parsed.Subject).Wrap(err)
	}

	out := &auth.Claims{
		UserID:    userID,
		Email:     parsed.Email,
		FirstName: parsed.FirstName,
		LastName:  parsed.LastName,
		Mobile:    parsed.Mobile,
		MemberID:  parsed.MemberID,
		SessionID: parsed.SessionID,
	}
	if parsed.IssuedAt != nil {
		out.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		out.ExpiresAt = parsed.ExpiresAt.Time
	}
	return out, nil
}
