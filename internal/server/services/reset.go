package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Velislav710/TeenBudget-sub001/internal/common"
	"github.com/Velislav710/TeenBudget-sub001/internal/logging"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/config"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/mail"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/password"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/repositories/repomanager"
)

// ResetService mails password reset links and applies new passwords.
//
// Reset tokens are not single-use: every token issued stays usable until its
// own expiry, however many times it is presented.
type ResetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       TokenCodec
	hasher      password.Hasher
	mailer      mail.Sender
	resetTTL    time.Duration
	linkBase    string
	log         logging.Logger
}

func NewResetService(db *sql.DB, m repomanager.RepositoryManager, codec TokenCodec,
	hasher password.Hasher, mailer mail.Sender, cfg *config.Config, log logging.Logger) *ResetService {
	return &ResetService{
		db:          db,
		repomanager: m,
		codec:       codec,
		hasher:      hasher,
		mailer:      mailer,
		resetTTL:    cfg.ResetTokenTTL,
		linkBase:    cfg.ResetLinkBaseURL,
		log:         log.With("module", "reset"),
	}
}

// RequestReset mails a fresh reset link to a registered address.
func (s *ResetService) RequestReset(ctx context.Context, email string) (err error) {
	ctx, span := tracer.Start(ctx, "reset.request")
	defer func() { finish(span, err) }()

	email = NormalizeEmail(email)
	if email == "" {
		return common.ErrValidation
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUserNotFound
		}
		s.log.Error(ctx, "user lookup failed", "error", err)
		return common.ErrInternal
	}

	token, err := s.codec.Issue(user.ID, s.resetTTL)
	if err != nil {
		s.log.Error(ctx, "reset token not issued", "user_id", user.ID, "error", err)
		return common.ErrInternal
	}

	msg, err := mail.ResetMessage(user.Email, user.FirstName, s.linkBase, token, s.resetTTL)
	if err != nil {
		s.log.Error(ctx, "reset message not rendered", "error", err)
		return common.ErrInternal
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error(ctx, "reset email not sent", "user_id", user.ID, "error", err)
		return common.ErrDelivery
	}
	return nil
}

// ResetPassword verifies the reset token and stores the new password. Token
// failures surface as common.ErrTokenExpired or common.ErrInvalidToken.
func (s *ResetService) ResetPassword(ctx context.Context, transport, newPassword string) (err error) {
	ctx, span := tracer.Start(ctx, "reset.apply")
	defer func() { finish(span, err) }()

	claims, err := s.codec.Verify(transport)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return common.ErrInvalidToken
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return common.ErrValidation
		}
		s.log.Error(ctx, "password hashing failed", "error", err)
		return common.ErrInternal
	}

	if err := s.repomanager.Users(s.db).UpdatePassword(ctx, claims.UserID, hash); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUserNotFound
		}
		s.log.Error(ctx, "password update failed", "user_id", claims.UserID, "error", err)
		return common.ErrInternal
	}

	s.log.Info(ctx, "password reset", "user_id", claims.UserID)
	return nil
}
