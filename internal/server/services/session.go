package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Velislav710/TeenBudget-sub001/internal/common"
	"github.com/Velislav710/TeenBudget-sub001/internal/logging"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/config"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/models"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/password"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/repositories/repomanager"
)

// SessionService signs users in and authenticates bearer tokens. There is no
// session table: a token stays valid until it expires.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       TokenCodec
	hasher      password.Hasher
	sessionTTL  time.Duration
	rememberTTL time.Duration
	log         logging.Logger
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, codec TokenCodec,
	hasher password.Hasher, cfg *config.Config, log logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		codec:       codec,
		hasher:      hasher,
		sessionTTL:  cfg.SessionTokenTTL,
		rememberTTL: cfg.RememberTokenTTL,
		log:         log.With("module", "session"),
	}
}

// SignIn checks the credentials and returns a session token, long-lived when
// remember is set.
func (s *SessionService) SignIn(ctx context.Context, email, plain string, remember bool) (token string, err error) {
	ctx, span := tracer.Start(ctx, "session.signin")
	defer func() { finish(span, err) }()

	email = NormalizeEmail(email)
	if email == "" || plain == "" {
		return "", common.ErrValidation
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUserNotFound
		}
		s.log.Error(ctx, "user lookup failed", "error", err)
		return "", common.ErrInternal
	}

	ok, err := s.hasher.Verify(plain, user.PasswordHash)
	if err != nil {
		s.log.Error(ctx, "password check failed", "user_id", user.ID, "error", err)
		return "", common.ErrInternal
	}
	if !ok {
		return "", common.ErrBadCredentials
	}

	lifetime := s.sessionTTL
	if remember {
		lifetime = s.rememberTTL
	}
	token, err = s.codec.Issue(user.ID, lifetime)
	if err != nil {
		s.log.Error(ctx, "token not issued", "user_id", user.ID, "error", err)
		return "", common.ErrInternal
	}
	return token, nil
}

// Authenticate resolves a bearer token to a user id. Every failure reads as
// common.ErrUnauthorized.
func (s *SessionService) Authenticate(ctx context.Context, transport string) (int64, error) {
	claims, err := s.codec.Verify(transport)
	if err != nil {
		s.log.Debug(ctx, "bearer token rejected", "error", err)
		return 0, common.ErrUnauthorized
	}
	return claims.UserID, nil
}

// CurrentUser loads the authenticated user.
func (s *SessionService) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		s.log.Error(ctx, "user lookup failed", "user_id", userID, "error", err)
		return nil, common.ErrInternal
	}
	return user, nil
}
