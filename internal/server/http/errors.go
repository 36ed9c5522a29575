package http

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"

	"github.com/Velislav710/TeenBudget-sub001/internal/common"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/i18n"
)

// invalidInput carries per-field validation failures.
type invalidInput struct {
	fields validation.Errors
}

func (e *invalidInput) Error() string { return e.fields.Error() }
func (e *invalidInput) Unwrap() error { return common.ErrValidation }

var errorTable = []struct {
	err    error
	status int
	key    string
}{
	{common.ErrValidation, fiber.StatusBadRequest, i18n.InvalidInput},
	{common.ErrEmailTaken, fiber.StatusBadRequest, i18n.EmailTaken},
	{common.ErrCodeMismatch, fiber.StatusBadRequest, i18n.CodeMismatch},
	{common.ErrCodeExpired, fiber.StatusBadRequest, i18n.CodeExpired},
	{common.ErrInvalidToken, fiber.StatusBadRequest, i18n.InvalidToken},
	{common.ErrTokenExpired, fiber.StatusBadRequest, i18n.TokenExpired},
	{common.ErrUnauthorized, fiber.StatusUnauthorized, i18n.Unauthorized},
	{common.ErrBadCredentials, fiber.StatusUnauthorized, i18n.BadCredentials},
	{common.ErrUserNotFound, fiber.StatusNotFound, i18n.UserNotFound},
	{common.ErrNoPendingSignup, fiber.StatusNotFound, i18n.NoPendingSignup},
	{common.ErrNotFound, fiber.StatusNotFound, i18n.ResourceNotFound},
	{common.ErrDelivery, fiber.StatusInternalServerError, i18n.DeliveryFailed},
	{common.ErrInternal, fiber.StatusInternalServerError, i18n.InternalError},
}

// classify maps an error to a status code and message key. Unknown errors
// are internal.
func classify(err error) (int, string) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.status, e.key
		}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch {
		case fe.Code == fiber.StatusTooManyRequests:
			return fe.Code, i18n.TooManyRequests
		case fe.Code == fiber.StatusNotFound || fe.Code == fiber.StatusMethodNotAllowed:
			return fe.Code, i18n.ResourceNotFound
		case fe.Code >= fiber.StatusInternalServerError:
			return fe.Code, i18n.InternalError
		default:
			return fe.Code, i18n.InvalidInput
		}
	}

	return fiber.StatusInternalServerError, i18n.InternalError
}

// handleError renders err as {"error": <localized message>}. Internal
// detail goes to the log only.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status, key := classify(err)
	if status >= fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed",
			"path", c.Path(), "request_id", c.Locals(requestIDKey), "error", err)
	}

	body := fiber.Map{"error": s.text(c, key)}
	var inv *invalidInput
	if errors.As(err, &inv) {
		body["fields"] = inv.fields
	}
	return c.Status(status).JSON(body)
}

func (s *Server) text(c *fiber.Ctx, key string) string {
	return s.tr.Text(s.tr.Match(c.Get(fiber.HeaderAcceptLanguage)), key)
}
