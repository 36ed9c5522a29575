// Package http exposes the account flows as a JSON API over Fiber.
package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Velislav710/TeenBudget-sub001/internal/logging"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/i18n"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/models"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

// SignupFlow is the email verification flow.
type SignupFlow interface {
	RequestSignup(ctx context.Context, req services.SignupRequest) error
	ResendCode(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, email, code string) (*models.User, error)
}

// SessionFlow signs users in and resolves bearer tokens.
type SessionFlow interface {
	SignIn(ctx context.Context, email, password string, remember bool) (string, error)
	Authenticate(ctx context.Context, transport string) (int64, error)
	CurrentUser(ctx context.Context, userID int64) (*models.User, error)
}

// ResetFlow is the password reset flow.
type ResetFlow interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, transport, newPassword string) error
}

// Options tunes the server.
type Options struct {
	Address         string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

type Server struct {
	app     *fiber.App
	address string
	signup  SignupFlow
	session SessionFlow
	reset   ResetFlow
	tr      *i18n.Translator
	logger  logging.Logger
}

func NewServer(opts Options, l logging.Logger, tr *i18n.Translator, signup SignupFlow, session SessionFlow, reset ResetFlow) *Server {
	s := &Server{
		address: opts.Address,
		signup:  signup,
		session: session,
		reset:   reset,
		tr:      tr,
		logger:  l.With("module", "http_server"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "teenbudget",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.routes(opts)
	return s
}

func (s *Server) routes(opts Options) {
	s.app.Use(requestID())
	s.app.Use(s.accessLog)

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	api := s.app.Group("/api/auth")
	limited := rateLimit(opts.RateLimitMax, opts.RateLimitWindow)

	api.Post("/signup", limited, s.handleSignup)
	api.Post("/resend-code", limited, s.handleResendCode)
	api.Post("/verify-email", limited, s.handleVerifyEmail)
	api.Post("/signin", limited, s.handleSignIn)
	api.Post("/forgot-password", limited, s.handleForgotPassword)
	api.Post("/reset-password", limited, s.handleResetPassword)
	api.Get("/me", s.requireBearer, s.handleMe)
}

// App exposes the underlying Fiber app, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(sctx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.app.Listen(s.address); err != nil {
		return err
	}

	return nil
}
