// Package pending holds signup attempts that are waiting for email
// verification. Entries live outside the user table and expire after a fixed
// code lifetime.
package pending

import (
	"context"
	"crypto/subtle"
	"time"
)

// DefaultCodeTTL is how long a verification code stays valid.
const DefaultCodeTTL = 15 * time.Minute

// Profile is the registration data carried until the email is verified.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Store keeps at most one pending signup per email.
//
// Begin replaces any earlier entry for the email. Reissue keeps the profile
// and replaces code and expiry, failing with common.ErrNoPendingSignup when
// there is nothing to refresh. Consume fails with common.ErrNoPendingSignup,
// common.ErrCodeExpired (entry removed) or common.ErrCodeMismatch (entry
// kept); on success the entry is removed and its profile returned.
type Store interface {
	Begin(ctx context.Context, email string, profile Profile) (string, error)
	Reissue(ctx context.Context, email string) (string, error)
	Consume(ctx context.Context, email, code string) (*Profile, error)
}

type entry struct {
	Code      string    `json:"code"`
	Profile   Profile   `json:"profile"`
	ExpiresAt time.Time `json:"expires_at"`
}

// expired reports whether the entry is past its deadline. The deadline
// instant itself is still valid.
func (e *entry) expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

func (e *entry) matches(code string) bool {
	return subtle.ConstantTimeCompare([]byte(e.Code), []byte(code)) == 1
}

type options struct {
	now  func() time.Time
	code CodeFunc
}

// Option customises a store.
type Option func(*options)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithCodeGenerator replaces the random code source.
func WithCodeGenerator(fn CodeFunc) Option {
	return func(o *options) { o.code = fn }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, code: GenerateCode}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
