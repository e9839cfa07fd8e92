// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

//go:build integration

package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
)

const password = "Secret1!"

// call sends a JSON request and decodes the JSON response body.
func call(method, path, bearer string, body any) (int, map[string]any) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(env.ctx, method, env.server.URL+path, reader)
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := env.server.Client().Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = resp.Body.Close() }()

	out := map[string]any{}
	Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
	return resp.StatusCode, out
}

func newEmail() string {
	return "api-" + strings.ToLower(ulid.Make().String()) + "@example.com"
}

func register(email string) map[string]any {
	status, body := call(http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":           email,
		"password":        password,
		"confirmPassword": password,
		"firstName":       "Ana",
		"lastName":        "Cruz",
		"mobile":          "09171234567",
	})
	Expect(status).To(Equal(http.StatusOK), "register: %v", body)
	return body
}

func login(email, pw string) (int, map[string]any) {
	return call(http.MethodPost, "/api/auth/login", "", map[string]any{"email": email, "password": pw})
}

func loginToken(email string) string {
	status, body := login(email, password)
	Expect(status).To(Equal(http.StatusOK), "login: %v", body)
	return body["token"].(string)
}

var _ = Describe("Member lifecycle over HTTP", func() {
	var email string

	BeforeEach(func() {
		email = newEmail()
	})

	It("registers a member with a formatted member id and a zero balance", func() {
		reg := register(email)
		Expect(reg["memberId"]).To(MatchRegexp(`^\d{9}-\d+$`))

		token := loginToken(email)
		status, me := call(http.MethodGet, "/api/users/me", token, nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(me["email"]).To(Equal(email))
		Expect(me["name"]).To(Equal("Ana Cruz"))
		Expect(me["memberId"]).To(Equal(reg["memberId"]))
		Expect(me["points"]).To(BeNumerically("==", 0))
	})

	It("rejects a second registration with the same email in any case", func() {
		register(email)

		status, body := call(http.MethodPost, "/api/auth/register", "", map[string]any{
			"email":           strings.ToUpper(email),
			"password":        password,
			"confirmPassword": password,
			"firstName":       "Ana",
			"lastName":        "Cruz",
		})
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body["error"]).To(Equal("conflict"))
	})

	It("keeps only the newest session per member", func() {
		register(email)
		first := loginToken(email)
		second := loginToken(email)

		status, body := call(http.MethodGet, "/api/auth/session-status", first, nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["isValid"]).To(BeFalse())

		status, body = call(http.MethodGet, "/api/users/me", first, nil)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body["error"]).To(Equal("session_invalid"))

		status, body = call(http.MethodGet, "/api/auth/session-status", second, nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["isValid"]).To(BeTrue())
	})

	It("ignores a logout from a superseded session", func() {
		register(email)
		first := loginToken(email)
		second := loginToken(email)

		status, _ := call(http.MethodPost, "/api/auth/logout", first, nil)
		Expect(status).To(Equal(http.StatusOK))

		_, body := call(http.MethodGet, "/api/auth/session-status", second, nil)
		Expect(body["isValid"]).To(BeTrue())
		status, _ = call(http.MethodGet, "/api/users/me", second, nil)
		Expect(status).To(Equal(http.StatusOK))
	})

	It("ends the session on logout", func() {
		register(email)
		token := loginToken(email)

		status, _ := call(http.MethodPost, "/api/auth/logout", token, nil)
		Expect(status).To(Equal(http.StatusOK))

		_, body := call(http.MethodGet, "/api/auth/session-status", token, nil)
		Expect(body["isValid"]).To(BeFalse())
	})

	It("replaces a forgotten password and accepts a reset", func() {
		register(email)

		status, _ := call(http.MethodPost, "/api/auth/forgot-password", "", map[string]any{"email": email})
		Expect(status).To(Equal(http.StatusOK))
		Expect(env.mailbox.count(email)).To(Equal(1))

		status, _ = login(email, password)
		Expect(status).To(Equal(http.StatusUnauthorized), "old password no longer works")

		status, _ = call(http.MethodPost, "/api/auth/reset-password", "", map[string]any{
			"email": email, "newPassword": "Changed2@",
		})
		Expect(status).To(Equal(http.StatusOK))

		status, _ = login(email, "Changed2@")
		Expect(status).To(Equal(http.StatusOK))
	})

	It("answers unknown addresses like known ones", func() {
		status, body := call(http.MethodPost, "/api/auth/forgot-password", "", map[string]any{"email": newEmail()})
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["message"]).To(ContainSubstring("If an account exists"))
	})

	It("throttles repeated forgot-password requests per address", func() {
		target := newEmail()
		for range resetAttempts {
			status, _ := call(http.MethodPost, "/api/auth/forgot-password", "", map[string]any{"email": target})
			Expect(status).To(Equal(http.StatusOK))
		}

		status, body := call(http.MethodPost, "/api/auth/forgot-password", "", map[string]any{"email": strings.ToUpper(target)})
		Expect(status).To(Equal(http.StatusTooManyRequests))
		Expect(body["error"]).To(Equal("throttled"))
	})

	It("deletes the account on unsubscribe", func() {
		register(email)
		token := loginToken(email)

		status, _ := call(http.MethodDelete, "/api/auth/unsubscribe", token, nil)
		Expect(status).To(Equal(http.StatusOK))

		status, _ = login(email, password)
		Expect(status).To(Equal(http.StatusUnauthorized))

		var users int
		Expect(env.pool.QueryRow(env.ctx, `SELECT COUNT(*) FROM users WHERE lower(email) = lower($1)`, email).Scan(&users)).To(Succeed())
		Expect(users).To(BeZero())
	})

	It("imports a batch with existing member ids and skips incomplete entries", func() {
		a, b := newEmail(), newEmail()
		status, gen := call(http.MethodGet, "/api/auth/generate-memberid", "", nil)
		Expect(status).To(Equal(http.StatusOK))
		next := auth.MemberSuffix(gen["memberId"].(string))
		Expect(next).To(BeNumerically(">", 0))

		series := strings.ToLower(ulid.Make().String())[:8]
		status, body := call(http.MethodPost, "/api/auth/bulk-register", "", []map[string]any{
			{"email": a, "password": password, "firstName": "A", "lastName": "One", "memberId": fmt.Sprintf("%s-%d", series, next)},
			{"email": newEmail(), "password": password, "firstName": "No", "lastName": "Member"},
			{"email": b, "password": password, "firstName": "B", "lastName": "Two", "memberId": fmt.Sprintf("%s-%d", series, next+1)},
		})
		Expect(status).To(Equal(http.StatusOK), "bulk: %v", body)
		Expect(body["count"]).To(BeNumerically("==", 2))
		Expect(body["skipped"]).To(HaveLen(1))

		Expect(loginToken(a)).NotTo(BeEmpty())
		Expect(loginToken(b)).NotTo(BeEmpty())
	})

	It("rejects requests without a token", func() {
		status, body := call(http.MethodGet, "/api/users/me", "", nil)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body["error"]).To(Equal("unauthenticated"))
	})
})
