package pending

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Velislav710/TeenBudget-sub001/internal/common"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// sequence hands out fixed codes in order.
func sequence(codes ...string) CodeFunc {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
}

var profile = Profile{FirstName: "Ana", LastName: "Lopez", Password: "p1"}

func newMemory(clock *testClock, codes ...string) *MemoryStore {
	return NewMemoryStore(15*time.Minute, WithClock(clock.Now), WithCodeGenerator(sequence(codes...)))
}

func TestMemoryStore_BeginConsume(t *testing.T) {
	ctx := context.Background()
	s := newMemory(newTestClock(), "123456")

	code, err := s.Begin(ctx, "a@x.com", profile)
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
	assert.Equal(t, 1, s.Len())

	got, err := s.Consume(ctx, "a@x.com", code)
	require.NoError(t, err)
	assert.Equal(t, profile, *got)
	assert.Equal(t, 0, s.Len())

	_, err = s.Consume(ctx, "a@x.com", code)
	assert.ErrorIs(t, err, common.ErrNoPendingSignup)
}

func TestMemoryStore_MismatchKeepsEntry(t *testing.T) {
	ctx := context.Background()
	s := newMemory(newTestClock(), "111111")

	code, err := s.Begin(ctx, "a@x.com", profile)
	require.NoError(t, err)

	_, err = s.Consume(ctx, "a@x.com", "999999")
	assert.ErrorIs(t, err, common.ErrCodeMismatch)
	assert.Equal(t, 1, s.Len())

	got, err := s.Consume(ctx, "a@x.com", code)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.FirstName)
}

func TestMemoryStore_ExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	s := newMemory(clock, "222222")

	code, err := s.Begin(ctx, "a@x.com", profile)
	require.NoError(t, err)

	clock.Advance(15 * time.Minute)
	_, err = s.Consume(ctx, "a@x.com", "000000")
	assert.ErrorIs(t, err, common.ErrCodeMismatch, "deadline instant is still valid")

	clock.Advance(time.Nanosecond)
	_, err = s.Consume(ctx, "a@x.com", code)
	assert.ErrorIs(t, err, common.ErrCodeExpired)
	assert.Equal(t, 0, s.Len())

	_, err = s.Consume(ctx, "a@x.com", code)
	assert.ErrorIs(t, err, common.ErrNoPendingSignup)
}

func TestMemoryStore_ExpiredWithWrongCodeStillExpires(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	s := newMemory(clock, "222222")

	_, err := s.Begin(ctx, "a@x.com", profile)
	require.NoError(t, err)
	clock.Advance(time.Hour)

	_, err = s.Consume(ctx, "a@x.com", "000000")
	assert.ErrorIs(t, err, common.ErrCodeExpired)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_BeginOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newMemory(newTestClock(), "111111", "222222")

	first, err := s.Begin(ctx, "a@x.com", profile)
	require.NoError(t, err)
	second, err := s.Begin(ctx, "a@x.com", Profile{FirstName: "Bo", Password: "p2"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	_, err = s.Consume(ctx, "a@x.com", first)
	assert.ErrorIs(t, err, common.ErrCodeMismatch)

	got, err := s.Consume(ctx, "a@x.com", second)
	require.NoError(t, err)
	assert.Equal(t, "Bo", got.FirstName)
}

func TestMemoryStore_ReissueReplacesCodeKeepsProfile(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	s := newMemory(clock, "111111", "333333")

	old, err := s.Begin(ctx, "a@x.com", profile)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	fresh, err := s.Reissue(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, old, fresh)

	_, err = s.Consume(ctx, "a@x.com", old)
	assert.ErrorIs(t, err, common.ErrCodeMismatch)

	clock.Advance(14 * time.Minute)
	got, err := s.Consume(ctx, "a@x.com", fresh)
	require.NoError(t, err, "reissue restarts the validity window")
	assert.Equal(t, profile, *got)
}

func TestMemoryStore_ReissueWithoutEntry(t *testing.T) {
	s := newMemory(newTestClock(), "111111")

	_, err := s.Reissue(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, common.ErrNoPendingSignup)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_CodeGeneratorFailure(t *testing.T) {
	errBoom := errors.New("boom")
	s := NewMemoryStore(time.Minute, WithCodeGenerator(func() (string, error) { return "", errBoom }))

	_, err := s.Begin(context.Background(), "a@x.com", profile)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := newMemory(newTestClock(), "111111", "222222")

	a, err := s.Begin(ctx, "a@x.com", profile)
	require.NoError(t, err)
	b, err := s.Begin(ctx, "b@x.com", profile)
	require.NoError(t, err)

	_, err = s.Consume(ctx, "a@x.com", b)
	assert.ErrorIs(t, err, common.ErrCodeMismatch)
	_, err = s.Consume(ctx, "b@x.com", b)
	require.NoError(t, err)
	_, err = s.Consume(ctx, "a@x.com", a)
	require.NoError(t, err)
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	s := newMemory(clock, "111111")

	_, err := s.Begin(ctx, "old@x.com", profile)
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)
	_, err = s.Begin(ctx, "new@x.com", profile)
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, s.Len())

	_, err = s.Consume(ctx, "old@x.com", "111111")
	assert.ErrorIs(t, err, common.ErrNoPendingSignup)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := fmt.Sprintf("u%d@x.com", i%5)
			code, err := s.Begin(ctx, email, profile)
			if err != nil {
				return
			}
			_, _ = s.Reissue(ctx, email)
			_, _ = s.Consume(ctx, email, code)
			_, _ = s.Sweep(ctx)
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, s.Len(), 5)
}
