package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/go-api-starter/internal/application/auth"
	"github.com/baechuer/go-api-starter/internal/domain"
)

type ottEntry struct {
	userID    string
	expiresAt time.Time
}

/*
OneTimeTokenStore
-----------------
In-memory verify-email / password-reset tokens for when Redis is down.
Expiry is checked lazily on read.
*/
type OneTimeTokenStore struct {
	mu sync.RWMutex
	// kind|token -> entry
	data map[string]ottEntry
}

func NewOneTimeTokenStore() *OneTimeTokenStore {
	return &OneTimeTokenStore{data: make(map[string]ottEntry)}
}

func ottKey(kind auth.OneTimeTokenKind, token string) string { return string(kind) + "|" + token }

func notFoundErr(kind auth.OneTimeTokenKind) error {
	if kind == auth.TokenVerifyEmail {
		return domain.ErrVerifyTokenNotFound()
	}
	return domain.ErrResetTokenNotFound()
}

func (s *OneTimeTokenStore) Save(ctx context.Context, kind auth.OneTimeTokenKind, token string, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[ottKey(kind, token)] = ottEntry{
		userID:    userID,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *OneTimeTokenStore) Consume(ctx context.Context, kind auth.OneTimeTokenKind, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := ottKey(kind, token)
	e, ok := s.data[k]
	if !ok {
		return "", notFoundErr(kind)
	}
	delete(s.data, k)
	if time.Now().After(e.expiresAt) {
		return "", notFoundErr(kind)
	}
	return e.userID, nil
}

func (s *OneTimeTokenStore) Peek(ctx context.Context, kind auth.OneTimeTokenKind, token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[ottKey(kind, token)]
	if !ok || time.Now().After(e.expiresAt) {
		return "", notFoundErr(kind)
	}
	return e.userID, nil
}
