package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Velislav710/TeenBudget-sub001/internal/common"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/auth"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/models"
)

func TestSignIn_SessionTokenBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "a@x.com", "p1")

	token, err := f.session.SignIn(ctx, "A@x.com", "p1", false)
	require.NoError(t, err)

	id, err := f.session.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	f.clock.Advance(time.Hour - time.Second)
	_, err = f.session.Authenticate(ctx, token)
	require.NoError(t, err, "valid one second before the hour")

	f.clock.Advance(time.Second)
	_, err = f.session.Authenticate(ctx, token)
	assert.ErrorIs(t, err, common.ErrUnauthorized, "rejected exactly at the hour")

	f.clock.Advance(time.Minute)
	_, err = f.session.Authenticate(ctx, token)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestSignIn_RememberLastsSevenDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com", "p1")

	token, err := f.session.SignIn(ctx, "a@x.com", "p1", true)
	require.NoError(t, err)

	f.clock.Advance(7*24*time.Hour - time.Second)
	_, err = f.session.Authenticate(ctx, token)
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	_, err = f.session.Authenticate(ctx, token)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestSignIn_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com", "p1")

	_, err := f.session.SignIn(ctx, "ghost@x.com", "p1", false)
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	_, err = f.session.SignIn(ctx, "a@x.com", "wrong", false)
	assert.ErrorIs(t, err, common.ErrBadCredentials)

	_, err = f.session.SignIn(ctx, "a@x.com", "", false)
	assert.ErrorIs(t, err, common.ErrValidation)

	f.users.getErr = errBoom
	_, err = f.session.SignIn(ctx, "a@x.com", "p1", false)
	assert.ErrorIs(t, err, common.ErrInternal)
}

func TestSignIn_CorruptHashIsInternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.users.Create(ctx, &models.User{Email: "a@x.com", PasswordHash: "not-a-bcrypt-hash"})
	require.NoError(t, err)

	_, err = f.session.SignIn(ctx, "a@x.com", "p1", false)
	assert.ErrorIs(t, err, common.ErrInternal)
}

func TestAuthenticate_RejectsGarbageAndForeignTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, tok := range []string{"", "abc", "YStiPQ=", "Bearer xyz"} {
		_, err := f.session.Authenticate(ctx, tok)
		assert.ErrorIs(t, err, common.ErrUnauthorized, "token %q", tok)
	}

	foreign, err := auth.NewCodec([]byte("other-secret"), auth.WithClock(f.clock.Now)).Issue(1, time.Hour)
	require.NoError(t, err)
	_, err = f.session.Authenticate(ctx, foreign)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestCurrentUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "a@x.com", "p1")

	got, err := f.session.CurrentUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	_, err = f.session.CurrentUser(ctx, 999)
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	f.users.getErr = errBoom
	_, err = f.session.CurrentUser(ctx, u.ID)
	assert.ErrorIs(t, err, common.ErrInternal)
}
