// Package auth issues and verifies the bearer tokens used for sessions and
// password resets.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Velislav710/TeenBudget-sub001/internal/common"
)

// Claims is the token payload: the user id plus the standard iat/exp pair.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"id"`
}

// Codec signs tokens with a single process-wide HMAC secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// Option customises a Codec.
type Option func(*Codec)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(secret []byte, opts ...Option) *Codec {
	c := &Codec{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue signs a token for userID valid for lifetime and returns it in
// transport form.
func (c *Codec) Issue(userID int64, lifetime time.Duration) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return EncodeTransport(signed), nil
}

// Verify decodes a transport token and checks signature and expiry.
//
// A token is valid strictly before its exp second. Expired but otherwise
// genuine tokens yield common.ErrTokenExpired; every other failure,
// including undecodable input, yields common.ErrInvalidToken.
func (c *Codec) Verify(transport string) (*Claims, error) {
	signed, err := DecodeTransport(transport)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(signed, claims, c.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

func (c *Codec) key(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return c.secret, nil
}
