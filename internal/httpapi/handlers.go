// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package httpapi

import (
	"net/http"

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
)

// recordAuth counts an auth operation by outcome when metrics are enabled.
func (h *handlers) recordAuth(event string, err error) {
	if h.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = auth.KindOf(err).String()
	}
	h.metrics.RecordAuthEvent(event, outcome)
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	reg, err := h.svc.Register(r.Context(), req.toAuth())
	h.recordAuth("register", err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, registerResponse{
		Message:  "Registration successful!",
		UserID:   reg.UserID,
		MemberID: reg.MemberID,
	})
}

func (h *handlers) bulkRegister(w http.ResponseWriter, r *http.Request) {
	var entries []bulkEntry
	if err := h.decode(w, r, &entries); err != nil {
		h.writeError(w, r, err)
		return
	}
	reqs := make([]auth.RegisterRequest, len(entries))
	for i, e := range entries {
		reqs[i] = auth.RegisterRequest{
			Email:     e.Email,
			Password:  e.Password,
			FirstName: e.FirstName,
			LastName:  e.LastName,
			Mobile:    e.Mobile,
			MemberID:  e.MemberID,
		}
	}

	result, err := h.svc.BulkRegister(r.Context(), reqs)
	h.recordAuth("bulk_register", err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := bulkRegisterResponse{
		Count:   len(result.Created),
		Users:   make([]bulkUser, 0, len(result.Created)),
		Skipped: make([]bulkSkipped, 0, len(result.Skipped)),
	}
	for _, c := range result.Created {
		resp.Users = append(resp.Users, bulkUser{ID: c.UserID, Email: c.Email, MemberID: c.MemberID})
	}
	for _, s := range result.Skipped {
		resp.Skipped = append(resp.Skipped, bulkSkipped{Index: s.Index, Email: s.Email, Reason: s.Reason})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) generateMemberID(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.GenerateMemberID(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, memberIDResponse{MemberID: id})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	h.recordAuth("login", err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Message:   "Login successful!",
		Token:     res.Token,
		SessionID: res.SessionID,
		ExpiresAt: res.ExpiresAt,
	})
}

func (h *handlers) sessionStatus(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	ok, err := h.svc.SessionStatus(r.Context(), claims.UserID, claims.SessionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionStatusResponse{IsValid: ok})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	err := h.svc.Logout(r.Context(), claims.UserID, claims.SessionID)
	h.recordAuth("logout", err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully."})
}

func (h *handlers) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	err := h.svc.ForgotPassword(r.Context(), req.Email)
	h.recordAuth("forgot_password", err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{
		Message: "If an account exists for that email, a temporary password has been sent.",
	})
}

func (h *handlers) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	err := h.svc.ResetPassword(r.Context(), req.Email, req.NewPassword)
	h.recordAuth("reset_password", err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Password has been reset successfully!"})
}

func (h *handlers) unsubscribe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	err := h.svc.Unsubscribe(r.Context(), claims.UserID, tokenFrom(r.Context()))
	h.recordAuth("unsubscribe", err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Account deleted successfully."})
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	profile, err := h.svc.Profile(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		Name:     profile.Name,
		Email:    profile.Email,
		Mobile:   profile.Mobile,
		MemberID: profile.MemberID,
		Points:   profile.Points,
	})
}
