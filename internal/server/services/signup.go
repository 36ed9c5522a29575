package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Velislav710/TeenBudget-sub001/internal/common"
	"github.com/Velislav710/TeenBudget-sub001/internal/dbx"
	"github.com/Velislav710/TeenBudget-sub001/internal/logging"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/config"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/mail"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/models"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/password"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/pending"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/repositories/repomanager"
)

// SignupRequest is the registration form.
type SignupRequest struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// SignupService runs the email verification flow: a signup request parks the
// profile in the pending store and mails a code; verifying the code promotes
// the profile to a user.
type SignupService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	pending     pending.Store
	hasher      password.Hasher
	mailer      mail.Sender
	codeTTL     time.Duration
	log         logging.Logger
}

func NewSignupService(db *sql.DB, m repomanager.RepositoryManager, store pending.Store,
	hasher password.Hasher, mailer mail.Sender, cfg *config.Config, log logging.Logger) *SignupService {
	return &SignupService{
		db:          db,
		repomanager: m,
		pending:     store,
		hasher:      hasher,
		mailer:      mailer,
		codeTTL:     cfg.SignupCodeTTL,
		log:         log.With("module", "signup"),
	}
}

// RequestSignup parks the profile and mails a verification code. If the mail
// cannot be sent the pending entry is kept and common.ErrDelivery returned.
func (s *SignupService) RequestSignup(ctx context.Context, req SignupRequest) (err error) {
	ctx, span := tracer.Start(ctx, "signup.request")
	defer func() { finish(span, err) }()

	email := NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return common.ErrValidation
	}

	_, err = s.repomanager.Users(s.db).GetByEmail(ctx, email)
	switch {
	case err == nil:
		return common.ErrEmailTaken
	case !errors.Is(err, common.ErrNotFound):
		s.log.Error(ctx, "user lookup failed", "error", err)
		return common.ErrInternal
	}

	code, err := s.pending.Begin(ctx, email, pending.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		s.log.Error(ctx, "pending signup not stored", "error", err)
		return common.ErrInternal
	}

	return s.sendCode(ctx, email, req.FirstName, code)
}

// ResendCode replaces the code of a pending signup and mails the new one.
func (s *SignupService) ResendCode(ctx context.Context, email string) (err error) {
	ctx, span := tracer.Start(ctx, "signup.resend")
	defer func() { finish(span, err) }()

	email = NormalizeEmail(email)
	if email == "" {
		return common.ErrValidation
	}

	code, err := s.pending.Reissue(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNoPendingSignup) {
			return err
		}
		s.log.Error(ctx, "code reissue failed", "error", err)
		return common.ErrInternal
	}

	return s.sendCode(ctx, email, "", code)
}

// VerifyEmail consumes the pending entry and creates the user.
func (s *SignupService) VerifyEmail(ctx context.Context, email, code string) (user *models.User, err error) {
	ctx, span := tracer.Start(ctx, "signup.verify")
	defer func() { finish(span, err) }()

	email = NormalizeEmail(email)
	if email == "" || code == "" {
		return nil, common.ErrValidation
	}

	profile, err := s.pending.Consume(ctx, email, code)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNoPendingSignup),
			errors.Is(err, common.ErrCodeExpired),
			errors.Is(err, common.ErrCodeMismatch):
			return nil, err
		}
		s.log.Error(ctx, "pending signup lookup failed", "error", err)
		return nil, common.ErrInternal
	}

	hash, err := s.hasher.Hash(profile.Password)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, common.ErrValidation
		}
		s.log.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetByEmail(ctx, email)
		if err == nil {
			return common.ErrEmailTaken
		}
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}

		user, err = repo.Create(ctx, &models.User{
			FirstName:    profile.FirstName,
			LastName:     profile.LastName,
			Email:        email,
			PasswordHash: hash,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return nil, err
		}
		s.log.Error(ctx, "user creation failed", "error", err)
		return nil, common.ErrInternal
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

func (s *SignupService) sendCode(ctx context.Context, email, firstName, code string) error {
	msg, err := mail.VerificationMessage(email, firstName, code, s.codeTTL)
	if err != nil {
		s.log.Error(ctx, "verification message not rendered", "error", err)
		return common.ErrInternal
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error(ctx, "verification email not sent", "error", err)
		return common.ErrDelivery
	}
	return nil
}
