// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package httpapi

import (
	"time"

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
)

// Field names follow the existing mobile and web clients.

type registerRequest struct {
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirmPassword"`
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	Mobile          *string `json:"mobile,omitempty" jsonschema:"nullable"`
	MemberID        string  `json:"memberId,omitempty"`
}

func (r registerRequest) toAuth() auth.RegisterRequest {
	return auth.RegisterRequest{
		Email:           r.Email,
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Mobile:          r.Mobile,
		MemberID:        r.MemberID,
	}
}

// bulkEntry is lenient: incomplete entries are skipped, not rejected.
type bulkEntry struct {
	Email     string  `json:"email,omitempty"`
	Password  string  `json:"password,omitempty"`
	FirstName string  `json:"firstName,omitempty"`
	LastName  string  `json:"lastName,omitempty"`
	Mobile    *string `json:"mobile,omitempty" jsonschema:"nullable"`
	MemberID  string  `json:"memberId,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type registerResponse struct {
	Message  string `json:"message"`
	UserID   int64  `json:"userId"`
	MemberID string `json:"memberId"`
}

type memberIDResponse struct {
	MemberID string `json:"memberId"`
}

type bulkUser struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	MemberID string `json:"memberId"`
}

type bulkSkipped struct {
	Index  int    `json:"index"`
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

type bulkRegisterResponse struct {
	Count   int           `json:"count"`
	Users   []bulkUser    `json:"users"`
	Skipped []bulkSkipped `json:"skipped"`
}

type loginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type sessionStatusResponse struct {
	IsValid bool `json:"isValid"`
}

type profileResponse struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Mobile   *string `json:"mobile"`
	MemberID string  `json:"memberId"`
	Points   float64 `json:"points"`
}
