package users

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/go-api-starter/internal/domain"
)

type auditEntry struct {
	action string
	fields map[string]string
}

type fakeUserRepo struct {
	mu sync.Mutex

	order []string // IDs in insertion order
	byID  map[string]domain.User

	getByIDErr     error
	listErr        error
	updateErr      error
	setRoleErr     error
	deleteErr      error
	countByRoleErr error

	deleted  []string
	setRoles []struct{ id, role string }
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]domain.User{}}
}

func (f *fakeUserRepo) add(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byID[u.ID]; !exists {
		f.order = append(f.order, u.ID)
	}
	f.byID[u.ID] = u
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	total := len(f.order)
	if offset >= total {
		return []domain.User{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]domain.User, 0, end-offset)
	for _, id := range f.order[offset:end] {
		out = append(out, f.byID[id])
	}
	return out, total, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return domain.User{}, f.updateErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	// emulate unique indexes on email/username
	for id, other := range f.byID {
		if id == u.ID {
			continue
		}
		if other.Email == u.Email {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		if other.Username == u.Username {
			return domain.User{}, domain.ErrUsernameAlreadyExists()
		}
	}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) SetRole(ctx context.Context, userID string, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setRoleErr != nil {
		return f.setRoleErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.Role = role
	f.byID[userID] = u
	f.setRoles = append(f.setRoles, struct{ id, role string }{userID, role})
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[userID]; !ok {
		return domain.ErrUserNotFound()
	}
	delete(f.byID, userID)
	for i, id := range f.order {
		if id == userID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	f.deleted = append(f.deleted, userID)
	return nil
}

func (f *fakeUserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.countByRoleErr != nil {
		return 0, f.countByRoleErr
	}
	cnt := 0
	for _, u := range f.byID {
		if u.Role == role {
			cnt++
		}
	}
	return cnt, nil
}

type fakeHasher struct {
	hashErr error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hash:" + password, nil
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked []string
	err     error
}

func (r *fakeRevoker) RevokeAll(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.revoked = append(r.revoked, userID)
	return nil
}

type fakeCache struct {
	mu sync.Mutex

	entries map[string]Page
	getErr  error

	sets    int
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]Page{}}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	p, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	if out, ok := dest.(*Page); ok {
		*out = p
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, val any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := val.(Page); ok {
		c.entries[key] = p
	}
	c.sets++
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.deletes = append(c.deletes, k)
	}
	return nil
}

func newSvcForTest(t *testing.T) (*Service, *fakeUserRepo, *fakeHasher, *fakeRevoker, *fakeCache, *[]auditEntry) {
	t.Helper()

	repo := newFakeUserRepo()
	hasher := &fakeHasher{}
	revoker := &fakeRevoker{}
	cache := newFakeCache()

	audits := &[]auditEntry{}
	svc := NewService(repo, hasher, revoker, cache).
		WithAudit(func(action string, fields map[string]string) {
			cp := map[string]string{}
			for k, v := range fields {
				cp[k] = v
			}
			*audits = append(*audits, auditEntry{action: action, fields: cp})
		})

	return svc, repo, hasher, revoker, cache, audits
}

func requireDomainCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	got := domain.Code(err)
	if got != wantCode {
		t.Fatalf("expected domain code %q, got %q (err=%v)", wantCode, got, err)
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

var errBoom = errors.New("boom")
