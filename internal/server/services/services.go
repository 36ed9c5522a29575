// Package services contains the account flows: signup with email
// verification, sign-in and password reset. Each flow translates collaborator
// failures into the sentinel errors of package common.
package services

import (
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Velislav710/TeenBudget-sub001/internal/server/auth"
)

var tracer = otel.Tracer("github.com/Velislav710/TeenBudget-sub001/internal/server/services")

// TokenCodec issues and verifies transport-encoded bearer tokens.
type TokenCodec interface {
	Issue(userID int64, lifetime time.Duration) (string, error)
	Verify(transport string) (*auth.Claims, error)
}

// NormalizeEmail trims and lower-cases an address so lookups and pending
// entries share one key per mailbox.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// finish records err on span and ends it.
func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
