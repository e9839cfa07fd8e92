// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package auth_test

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
)

// testIterations keeps PBKDF2 fast in tests.
const testIterations = 1000

// memStore is an in-memory implementation of every repository the service
// uses. InTransaction snapshots all tables and restores them when fn fails,
// so atomicity can be checked without a database.
type memStore struct {
	mu          sync.Mutex
	nextUserID  int64
	users       map[int64]auth.User
	memberships map[string]auth.Membership
	sessions    map[string]auth.Session
	points      map[string]float64

	// failOn makes the named operation return an error, e.g. "users.Delete".
	failOn string
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[int64]auth.User),
		memberships: make(map[string]auth.Membership),
		sessions:    make(map[string]auth.Session),
		points:      make(map[string]float64),
	}
}

func (m *memStore) fail(op string) error {
	if m.failOn == op {
		return oops.Code("FAKE_FAILURE").With("injected_at", op).Errorf("injected failure")
	}
	return nil
}

type memSnapshot struct {
	nextUserID  int64
	users       map[int64]auth.User
	memberships map[string]auth.Membership
	sessions    map[string]auth.Session
	points      map[string]float64
}

func (m *memStore) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	snap := memSnapshot{
		nextUserID:  m.nextUserID,
		users:       maps.Clone(m.users),
		memberships: maps.Clone(m.memberships),
		sessions:    maps.Clone(m.sessions),
		points:      maps.Clone(m.points),
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.nextUserID = snap.nextUserID
		m.users = snap.users
		m.memberships = snap.memberships
		m.sessions = snap.sessions
		m.points = snap.points
		m.mu.Unlock()
		return err
	}
	return nil
}

// users

type memUsers struct{ *memStore }

func (r memUsers) Create(_ context.Context, u *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("users.Create"); err != nil {
		return err
	}
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return oops.Code(auth.CodeEmailTaken).Errorf("email already registered")
		}
	}
	r.nextUserID++
	u.ID = r.nextUserID
	r.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("users.UpdatePassword"); err != nil {
		return err
	}
	u, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.PasswordHash = hash
	r.users[id] = u
	return nil
}

func (r memUsers) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("users.Delete"); err != nil {
		return err
	}
	if _, ok := r.users[id]; !ok {
		return auth.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// memberships

type memMemberships struct{ *memStore }

func (r memMemberships) Create(_ context.Context, ms *auth.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("memberships.Create"); err != nil {
		return err
	}
	if _, ok := r.memberships[ms.MemberID]; ok {
		return oops.Code(auth.CodeMemberIDTaken).Errorf("member id already exists")
	}
	if seq := auth.MemberSuffix(ms.MemberID); seq > 0 {
		for id := range r.memberships {
			if auth.MemberSuffix(id) == seq {
				return oops.Code(auth.CodeMemberIDTaken).Errorf("member id suffix already in use")
			}
		}
	}
	r.memberships[ms.MemberID] = *ms
	return nil
}

func (r memMemberships) GetByUserID(_ context.Context, userID int64) (*auth.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ms := range r.memberships {
		if ms.UserID == userID {
			return &ms, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r memMemberships) ListMemberIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.memberships))
	for id := range r.memberships {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r memMemberships) DeleteByUserID(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("memberships.DeleteByUserID"); err != nil {
		return err
	}
	for id, ms := range r.memberships {
		if ms.UserID == userID {
			delete(r.memberships, id)
			return nil
		}
	}
	return auth.ErrNotFound
}

// sessions

type memSessions struct{ *memStore }

func (r memSessions) Replace(_ context.Context, s *auth.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.sessions {
		if existing.UserID == s.UserID {
			delete(r.sessions, id)
		}
	}
	r.sessions[s.ID] = *s
	return nil
}

func (r memSessions) Exists(_ context.Context, userID int64, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	return ok && s.UserID == userID, nil
}

func (r memSessions) GetByID(_ context.Context, sessionID string) (*auth.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &s, nil
}

func (r memSessions) DeleteByUserIfCurrent(_ context.Context, userID int64, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sessionID]; !ok || s.UserID != userID {
		return false, nil
	}
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return true, nil
}

func (r memSessions) DeleteByUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("sessions.DeleteByUser"); err != nil {
		return err
	}
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (m *memStore) sessionCount(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sessions {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

// points

type memPoints struct{ *memStore }

func (r memPoints) Open(_ context.Context, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("points.Open"); err != nil {
		return err
	}
	r.points[memberID] = 0
	return nil
}

func (r memPoints) FindBalance(_ context.Context, memberID string) (float64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.points[memberID]
	return b, ok, nil
}

func (r memPoints) Delete(_ context.Context, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("points.Delete"); err != nil {
		return err
	}
	delete(r.points, memberID)
	return nil
}

// mail

type sentMail struct {
	To, Subject, Body string
}

type memMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *memMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// dependencies wires a memStore into auth.Dependencies.
func (m *memStore) dependencies(tokens auth.TokenCodec, mailer auth.EmailSender) auth.Dependencies {
	return auth.Dependencies{
		Users:       memUsers{m},
		Memberships: memMemberships{m},
		Sessions:    memSessions{m},
		Points:      memPoints{m},
		Transactor:  m,
		Hasher:      auth.NewPBKDF2HasherWithIterations(testIterations),
		Tokens:      tokens,
		Mailer:      mailer,
	}
}
