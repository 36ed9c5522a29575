package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/Velislav710/TeenBudget-sub001/internal/common"
)

const (
	requestIDKey = "requestid"
	userIDKey    = "user_id"
)

func requestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     common.RequestIDHeaderName,
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	})
}

// rateLimit caps requests per client IP. A non-positive max disables it.
func rateLimit(limit int, window time.Duration) fiber.Handler {
	if limit <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if window <= 0 {
		window = time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.ErrTooManyRequests
		},
	})
}

// accessLog writes one line per request. Handler errors are rendered here so
// the logged status is the one the client sees.
func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := s.handleError(c, err); herr != nil {
			return herr
		}
	}

	s.logger.Info(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency_ms", time.Since(start).Milliseconds(),
		"request_id", c.Locals(requestIDKey),
	)
	return nil
}

// requireBearer resolves the Authorization header to a user id stored in
// the request locals.
func (s *Server) requireBearer(c *fiber.Ctx) error {
	scheme, token, ok := strings.Cut(c.Get(common.AuthorizationHeaderName), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) || token == "" {
		return common.ErrUnauthorized
	}

	id, err := s.session.Authenticate(c.UserContext(), token)
	if err != nil {
		return common.ErrUnauthorized
	}

	c.Locals(userIDKey, id)
	return c.Next()
}

func userID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(userIDKey).(int64)
	return id
}
