package pending

import (
	"context"
	"sync"
	"time"

	"github.com/Velislav710/TeenBudget-sub001/internal/common"
)

// MemoryStore is a mutex-guarded in-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	opts    options
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration, opts ...Option) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &MemoryStore{
		entries: make(map[string]*entry),
		ttl:     ttl,
		opts:    buildOptions(opts),
	}
}

func (s *MemoryStore) Begin(_ context.Context, email string, profile Profile) (string, error) {
	code, err := s.opts.code()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[email] = &entry{
		Code:      code,
		Profile:   profile,
		ExpiresAt: s.opts.now().Add(s.ttl),
	}
	return code, nil
}

func (s *MemoryStore) Reissue(_ context.Context, email string) (string, error) {
	code, err := s.opts.code()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[email]
	if !ok {
		return "", common.ErrNoPendingSignup
	}
	e.Code = code
	e.ExpiresAt = s.opts.now().Add(s.ttl)
	return code, nil
}

func (s *MemoryStore) Consume(_ context.Context, email, code string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[email]
	if !ok {
		return nil, common.ErrNoPendingSignup
	}
	if e.expired(s.opts.now()) {
		delete(s.entries, email)
		return nil, common.ErrCodeExpired
	}
	if !e.matches(code) {
		return nil, common.ErrCodeMismatch
	}

	delete(s.entries, email)
	profile := e.Profile
	return &profile, nil
}

// Len returns the number of entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops every expired entry and returns how many were removed.
func (s *MemoryStore) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.now()
	removed := 0
	for email, e := range s.entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if e.expired(now) {
			delete(s.entries, email)
			removed++
		}
	}
	return removed, nil
}
