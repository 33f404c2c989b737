package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/donor-crm/internal/entity"
	"github.com/xavierca1/donor-crm/internal/security"
)

type TokenIssuer interface {
	IssueAccess(sessionID, userID, orgID string) (string, time.Time, error)
	IssueRefresh(sessionID, userID, orgID string, expiresAt time.Time) (token, jti string, err error)
	ValidateAccess(token string) (*security.Principal, error)
	ValidateRefresh(token string) (*security.Principal, error)
}

type PasswordHasher interface {
	Hash(password []byte) (string, error)
	Compare(hash string, password []byte) error
}

type AuthConfig struct {
	RefreshTTL      time.Duration
	MaxSessionAge   time.Duration
	MaxFailures     int
	LockoutWindow   time.Duration
	DefaultTimezone string
}

type AuthService struct {
	orgs     entity.OrganizationRepositoryInterface
	users    entity.UserRepositoryInterface
	sessions entity.SessionRepositoryInterface
	attempts entity.LoginAttemptRepositoryInterface
	tokens   TokenIssuer
	hasher   PasswordHasher
	cfg      AuthConfig
	clock    Clock
	logger   *zap.Logger
}

func NewAuthService(
	orgs entity.OrganizationRepositoryInterface,
	users entity.UserRepositoryInterface,
	sessions entity.SessionRepositoryInterface,
	attempts entity.LoginAttemptRepositoryInterface,
	tokens TokenIssuer,
	hasher PasswordHasher,
	cfg AuthConfig,
	clock Clock,
	logger *zap.Logger,
) *AuthService {
	if cfg.DefaultTimezone == "" {
		cfg.DefaultTimezone = "UTC"
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		orgs:     orgs,
		users:    users,
		sessions: sessions,
		attempts: attempts,
		tokens:   tokens,
		hasher:   hasher,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
	}
}

// Register creates an organization and its first ADMIN user, then signs the
// user in. The organization is removed again if the user cannot be created.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthOutput, error) {
	if errs := ValidateRegisterInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	email := normalizeEmail(input.Email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, &DomainError{Code: CodeConflict, Message: "email already registered"}
	} else if !errors.Is(err, entity.ErrUserNotFound) {
		return nil, queryFailed("user", err)
	}

	hash, err := s.hasher.Hash([]byte(input.Password))
	if err != nil {
		return nil, &TechnicalError{Code: CodeWriteFailed, Message: "password hashing failed", Err: err}
	}

	tz := input.Timezone
	if tz == "" {
		tz = s.cfg.DefaultTimezone
	}
	now := s.clock.Now()
	org, err := entity.NewOrganization(input.OrganizationName, tz, now)
	if err != nil {
		return nil, invalid("organization", err.Error())
	}
	user := entity.NewUser(org.ID, strings.TrimSpace(input.Name), email, hash, entity.RoleAdmin, now)

	tx := NewTransaction(s.logger)
	tx.AddOperation("create organization",
		func(ctx context.Context) error { return s.orgs.Create(ctx, org) },
		func(ctx context.Context) error { return s.orgs.Delete(ctx, org.ID) },
	)
	tx.AddOperation("create user",
		func(ctx context.Context) error { return s.users.Create(ctx, user) },
		nil,
	)
	if err := tx.Execute(ctx); err != nil {
		if errors.Is(err, entity.ErrEmailAlreadyExists) {
			return nil, &DomainError{Code: CodeConflict, Message: "email already registered"}
		}
		return nil, writeFailed("registration", err)
	}

	s.logger.Info("organization registered",
		zap.String("organization_id", org.ID),
		zap.String("user_id", user.ID),
	)
	return s.startSession(ctx, user)
}

// Login checks the lockout before the password so a locked account gives no
// signal about whether the password was right.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthOutput, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, unauthorized()
	}
	now := s.clock.Now()

	failures, err := s.attempts.CountFailuresSince(ctx, email, now.Add(-s.cfg.LockoutWindow))
	if err != nil {
		return nil, queryFailed("login attempts", err)
	}
	if s.cfg.MaxFailures > 0 && failures >= s.cfg.MaxFailures {
		s.logger.Warn("login blocked by lockout", zap.String("email", email), zap.String("ip", input.IP))
		return nil, &DomainError{Code: CodeLocked, Message: "too many failed login attempts, try again later"}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, entity.ErrUserNotFound) {
		return nil, queryFailed("user", err)
	}
	if user == nil || !user.Active || s.hasher.Compare(user.PasswordHash, []byte(input.Password)) != nil {
		if rerr := s.attempts.RecordFailure(ctx, email, input.IP, now); rerr != nil {
			s.logger.Error("failed to record login failure", zap.String("email", email), zap.Error(rerr))
		}
		return nil, unauthorized()
	}

	if err := s.attempts.Clear(ctx, email); err != nil {
		s.logger.Warn("failed to clear login attempts", zap.String("email", email), zap.Error(err))
	}
	return s.startSession(ctx, user)
}

// Refresh rotates the refresh token. Presenting a token that is no longer
// the session's current one revokes the whole session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthOutput, error) {
	principal, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, unauthorized()
	}

	session, err := s.sessions.FindByID(ctx, principal.SessionID)
	if err != nil {
		if errors.Is(err, entity.ErrSessionNotFound) {
			return nil, unauthorized()
		}
		return nil, queryFailed("session", err)
	}

	now := s.clock.Now()
	if !session.Usable(now) {
		return nil, unauthorized()
	}
	if session.RefreshJTI != principal.JTI || !security.RefreshTokenHashEqual(refreshToken, session.RefreshTokenHash) {
		s.logger.Warn("refresh token reuse detected, revoking session",
			zap.String("session_id", session.ID),
			zap.String("user_id", session.UserID),
		)
		if err := s.sessions.Revoke(ctx, session.ID, now); err != nil {
			return nil, writeFailed("session revoke", err)
		}
		return nil, unauthorized()
	}

	expiresAt := session.SlidingExpiry(now, s.cfg.RefreshTTL, s.cfg.MaxSessionAge)
	if !expiresAt.After(now) {
		return nil, unauthorized()
	}

	token, jti, err := s.tokens.IssueRefresh(session.ID, session.UserID, session.OrganizationID, expiresAt)
	if err != nil {
		return nil, &TechnicalError{Code: CodeWriteFailed, Message: "token issue failed", Err: err}
	}
	if err := s.sessions.Rotate(ctx, session.ID, jti, security.HashRefreshToken(token), expiresAt, now); err != nil {
		return nil, writeFailed("session rotate", err)
	}
	access, accessExp, err := s.tokens.IssueAccess(session.ID, session.UserID, session.OrganizationID)
	if err != nil {
		return nil, &TechnicalError{Code: CodeWriteFailed, Message: "token issue failed", Err: err}
	}

	return &AuthOutput{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     token,
		RefreshExpiresAt: expiresAt,
		UserID:           session.UserID,
		OrganizationID:   session.OrganizationID,
	}, nil
}

// Authenticate validates an access token and requires its session to be
// live, so a logged-out or expired session stops working immediately.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*security.Principal, error) {
	principal, err := s.tokens.ValidateAccess(accessToken)
	if err != nil {
		return nil, unauthorized()
	}
	session, err := s.sessions.FindByID(ctx, principal.SessionID)
	if err != nil {
		if errors.Is(err, entity.ErrSessionNotFound) {
			return nil, unauthorized()
		}
		return nil, queryFailed("session", err)
	}
	if !session.Usable(s.clock.Now()) || session.UserID != principal.UserID {
		return nil, unauthorized()
	}
	return principal, nil
}

// Logout revokes the session. Unknown sessions are ignored.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	err := s.sessions.Revoke(ctx, sessionID, s.clock.Now())
	if err != nil && !errors.Is(err, entity.ErrSessionNotFound) {
		return writeFailed("session revoke", err)
	}
	return nil
}

func (s *AuthService) startSession(ctx context.Context, user *entity.User) (*AuthOutput, error) {
	now := s.clock.Now()
	session := entity.NewSession(user.ID, user.OrganizationID, now)
	session.ExpiresAt = session.SlidingExpiry(now, s.cfg.RefreshTTL, s.cfg.MaxSessionAge)

	token, jti, err := s.tokens.IssueRefresh(session.ID, user.ID, user.OrganizationID, session.ExpiresAt)
	if err != nil {
		return nil, &TechnicalError{Code: CodeWriteFailed, Message: "token issue failed", Err: err}
	}
	session.RefreshJTI = jti
	session.RefreshTokenHash = security.HashRefreshToken(token)

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, writeFailed("session", err)
	}

	access, accessExp, err := s.tokens.IssueAccess(session.ID, user.ID, user.OrganizationID)
	if err != nil {
		return nil, &TechnicalError{Code: CodeWriteFailed, Message: "token issue failed", Err: err}
	}
	return &AuthOutput{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     token,
		RefreshExpiresAt: session.ExpiresAt,
		UserID:           user.ID,
		OrganizationID:   user.OrganizationID,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
