// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTokenTTL is the access token lifetime when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// Member id conflict retry defaults.
const (
	defaultMemberIDRetries    = 5
	defaultMemberIDRetryDelay = 25 * time.Millisecond
)

var tracer = otel.Tracer("amesco/auth")

// Dependencies are the collaborators a Service needs. All fields are required.
type Dependencies struct {
	Users       UserRepository
	Memberships MembershipRepository
	Sessions    SessionRepository
	Points      PointsLedger
	Transactor  Transactor
	Hasher      PasswordHasher
	Tokens      TokenCodec
	Mailer      EmailSender
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for best-effort failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTokenTTL sets the access token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithResetThrottle limits forgot-password requests.
func WithResetThrottle(throttle ResetThrottle) Option {
	return func(s *Service) {
		s.throttle = throttle
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMemberIDRetries sets how often registration retries after a generated
// member id collides, and the pause between attempts.
func WithMemberIDRetries(retries uint64, delay time.Duration) Option {
	return func(s *Service) {
		s.memberIDRetries = retries
		if delay > 0 {
			s.memberIDRetryDelay = delay
		}
	}
}

// Service provides registration, login, session and account operations.
type Service struct {
	users       UserRepository
	memberships MembershipRepository
	sessions    SessionRepository
	points      PointsLedger
	tx          Transactor
	hasher      PasswordHasher
	tokens      TokenCodec
	mailer      EmailSender
	throttle    ResetThrottle
	logger      *slog.Logger
	now         func() time.Time

	tokenTTL           time.Duration
	memberIDRetries    uint64
	memberIDRetryDelay time.Duration
}

// NewService creates a Service. It fails if any dependency is nil.
func NewService(deps Dependencies, opts ...Option) (*Service, error) {
	missing := make([]string, 0)
	if deps.Users == nil {
		missing = append(missing, "users")
	}
	if deps.Memberships == nil {
		missing = append(missing, "memberships")
	}
	if deps.Sessions == nil {
		missing = append(missing, "sessions")
	}
	if deps.Points == nil {
		missing = append(missing, "points")
	}
	if deps.Transactor == nil {
		missing = append(missing, "transactor")
	}
	if deps.Hasher == nil {
		missing = append(missing, "hasher")
	}
	if deps.Tokens == nil {
		missing = append(missing, "tokens")
	}
	if deps.Mailer == nil {
		missing = append(missing, "mailer")
	}
	if len(missing) > 0 {
		return nil, oops.Code(CodeMissingDependency).
			With("missing", strings.Join(missing, ",")).
			Errorf("auth service dependencies are required")
	}

	s := &Service{
		users:              deps.Users,
		memberships:        deps.Memberships,
		sessions:           deps.Sessions,
		points:             deps.Points,
		tx:                 deps.Transactor,
		hasher:             deps.Hasher,
		tokens:             deps.Tokens,
		mailer:             deps.Mailer,
		logger:             slog.Default(),
		now:                time.Now,
		tokenTTL:           DefaultTokenTTL,
		memberIDRetries:    defaultMemberIDRetries,
		memberIDRetryDelay: defaultMemberIDRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	UserID    int64
	Token     string
	SessionID string
	ExpiresAt time.Time
}

// Login verifies credentials and starts a new session, revoking any other
// session of the user.
func (s *Service) Login(ctx context.Context, email, password string) (_ *LoginResult, err error) {
	ctx, span := tracer.Start(ctx, "auth.login")
	defer func() { endSpan(span, err) }()

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, missingField("email")
	}
	if password == "" {
		return nil, missingField("password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeUserNotFound).Errorf("user not found")
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").With("operation", "get user by email").Wrap(err)
	}
	span.SetAttributes(attribute.Int64("user.id", user.ID))

	valid, verifyErr := s.hasher.Verify(password, user.PasswordHash)
	if verifyErr != nil {
		s.logger.WarnContext(ctx, "stored password hash could not be verified",
			"user_id", user.ID,
			"error", verifyErr.Error())
	}
	if verifyErr != nil || !valid {
		return nil, oops.Code(CodeInvalidCredentials).Errorf("invalid email or password")
	}

	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		s.upgradeHash(ctx, user.ID, password)
	}

	memberID, err := s.memberIDOf(ctx, user.ID)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").With("operation", "get membership").Wrap(err)
	}

	sessionID, err := GenerateSessionID()
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").With("operation", "generate session id").Wrap(err)
	}

	now := s.now()
	mobile := ""
	if user.Mobile != nil {
		mobile = *user.Mobile
	}
	token, err := s.tokens.Issue(Claims{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Mobile:    mobile,
		MemberID:  memberID,
		SessionID: sessionID,
		IssuedAt:  now,
	}, s.tokenTTL)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").With("operation", "issue token").Wrap(err)
	}

	session, err := NewSession(sessionID, user.ID, token)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").With("operation", "create session").Wrap(err)
	}
	err = s.tx.InTransaction(ctx, func(txCtx context.Context) error {
		return s.sessions.Replace(txCtx, session)
	})
	if err != nil {
		return nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "replace sessions").
			With("user_id", user.ID).
			Wrap(err)
	}

	return &LoginResult{
		UserID:    user.ID,
		Token:     token,
		SessionID: sessionID,
		ExpiresAt: now.Add(s.tokenTTL),
	}, nil
}

// upgradeHash re-hashes a verified password into the current format.
// Failures are logged and never fail the login.
func (s *Service) upgradeHash(ctx context.Context, userID int64, password string) {
	newHash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.WarnContext(ctx, "best-effort password rehash failed",
			"operation", "rehash_password",
			"user_id", userID,
			"error", err.Error())
		return
	}
	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		s.logger.WarnContext(ctx, "best-effort password rehash persist failed",
			"operation", "rehash_password",
			"user_id", userID,
			"error", err.Error())
		return
	}
	s.logger.InfoContext(ctx, "password hash upgraded", "user_id", userID)
}

// memberIDOf returns the member id of a user, or "" when the user has none.
func (s *Service) memberIDOf(ctx context.Context, userID int64) (string, error) {
	membership, err := s.memberships.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return membership.MemberID, nil
}

// SessionStatus reports whether sessionID is the user's current session.
func (s *Service) SessionStatus(ctx context.Context, userID int64, sessionID string) (bool, error) {
	if userID <= 0 || sessionID == "" {
		return false, nil
	}
	ok, err := s.sessions.Exists(ctx, userID, sessionID)
	if err != nil {
		return false, oops.Code("AUTH_SESSION_STATUS_FAILED").
			With("operation", "lookup session").
			With("user_id", userID).
			Wrap(err)
	}
	return ok, nil
}

// VerifyToken checks the signature and expiry of an access token without
// consulting the session registry.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	if token == "" {
		return nil, oops.Code(CodeUnauthenticated).Errorf("missing access token")
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, oops.Code(CodeUnauthenticated).With("reason", err.Error()).Errorf("invalid access token")
	}
	if claims.UserID <= 0 || claims.SessionID == "" {
		return nil, oops.Code(CodeUnauthenticated).Errorf("access token lacks subject or session")
	}
	return claims, nil
}

// Authenticate verifies token and requires its session to still be current.
// A malformed or unsigned token is AUTH_UNAUTHENTICATED; a superseded or
// logged-out session is AUTH_SESSION_INVALID.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	ok, err := s.SessionStatus(ctx, claims.UserID, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, oops.Code(CodeSessionInvalid).
			With("user_id", claims.UserID).
			Errorf("session expired or logged in elsewhere")
	}
	return claims, nil
}

// Logout removes every session of the user when sessionID is the user's
// current session. A superseded or already ended session changes nothing,
// so a stale device cannot sign out the login that replaced it. Logging out
// twice is not an error.
func (s *Service) Logout(ctx context.Context, userID int64, sessionID string) (err error) {
	ctx, span := tracer.Start(ctx, "auth.logout", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer func() { endSpan(span, err) }()

	removed, err := s.sessions.DeleteByUserIfCurrent(ctx, userID, sessionID)
	if err != nil {
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "delete sessions").
			With("user_id", userID).
			Wrap(err)
	}
	if !removed {
		s.logger.DebugContext(ctx, "logout with a session that is no longer current", "user_id", userID)
	}
	span.SetAttributes(attribute.Bool("session.removed", removed))
	return nil
}

// Profile is the account summary shown to a signed-in member.
type Profile struct {
	UserID   int64
	Name     string
	Email    string
	Mobile   *string
	MemberID string
	Points   float64
}

// Profile returns the account summary of a user, including the point balance.
func (s *Service) Profile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeUserNotFound).With("user_id", userID).Errorf("user not found")
		}
		return nil, oops.Code("AUTH_PROFILE_FAILED").With("operation", "get user").Wrap(err)
	}

	memberID, err := s.memberIDOf(ctx, userID)
	if err != nil {
		return nil, oops.Code("AUTH_PROFILE_FAILED").With("operation", "get membership").Wrap(err)
	}

	profile := &Profile{
		UserID:   user.ID,
		Name:     user.FullName(),
		Email:    user.Email,
		Mobile:   user.Mobile,
		MemberID: memberID,
	}
	if memberID == "" {
		return profile, nil
	}

	balance, found, err := s.points.FindBalance(ctx, memberID)
	if err != nil {
		return nil, oops.Code("AUTH_PROFILE_FAILED").With("operation", "find balance").Wrap(err)
	}
	if found {
		profile.Points = balance
	}
	return profile, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, KindOf(err).String())
	}
	span.End()
}
