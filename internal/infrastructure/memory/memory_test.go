package memory

import (
	"context"
	"testing"
	"time"

	"github.com/baechuer/go-api-starter/internal/application/auth"
	"github.com/baechuer/go-api-starter/internal/domain"
)

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", code)
	}
	if got := domain.Code(err); got != code {
		t.Fatalf("expected code %q, got %q (%v)", code, got, err)
	}
}

func TestSessionStore_CreateGetRotate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewSessionStore()

	tok, err := s.CreateRefreshToken(ctx, "u1", time.Hour)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	uid, err := s.GetUserIDByRefreshToken(ctx, tok)
	if err != nil || uid != "u1" {
		t.Fatalf("get: uid=%q err=%v", uid, err)
	}

	tok2, err := s.RotateRefreshToken(ctx, tok, time.Hour)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if tok2 == tok {
		t.Fatal("rotate returned the same token")
	}

	// old token is dead after rotation
	_, err = s.GetUserIDByRefreshToken(ctx, tok)
	requireCode(t, err, "refresh_token_invalid")

	uid, err = s.GetUserIDByRefreshToken(ctx, tok2)
	if err != nil || uid != "u1" {
		t.Fatalf("get rotated: uid=%q err=%v", uid, err)
	}
}

func TestSessionStore_Expiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewSessionStore()

	tok, err := s.CreateRefreshToken(ctx, "u1", -time.Second)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = s.GetUserIDByRefreshToken(ctx, tok)
	requireCode(t, err, "refresh_token_invalid")
}

func TestSessionStore_RevokeAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewSessionStore()

	t1, _ := s.CreateRefreshToken(ctx, "u1", time.Hour)
	t2, _ := s.CreateRefreshToken(ctx, "u1", time.Hour)
	other, _ := s.CreateRefreshToken(ctx, "u2", time.Hour)

	if err := s.RevokeAll(ctx, "u1"); err != nil {
		t.Fatalf("revoke all: %v", err)
	}

	_, err := s.GetUserIDByRefreshToken(ctx, t1)
	requireCode(t, err, "refresh_token_invalid")
	_, err = s.GetUserIDByRefreshToken(ctx, t2)
	requireCode(t, err, "refresh_token_invalid")

	uid, err := s.GetUserIDByRefreshToken(ctx, other)
	if err != nil || uid != "u2" {
		t.Fatalf("other user's token should survive: uid=%q err=%v", uid, err)
	}
}

func TestOneTimeTokenStore_ConsumeOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewOneTimeTokenStore()

	if err := s.Save(ctx, auth.TokenPasswordReset, "tok", "u1", time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	uid, err := s.Peek(ctx, auth.TokenPasswordReset, "tok")
	if err != nil || uid != "u1" {
		t.Fatalf("peek: uid=%q err=%v", uid, err)
	}

	uid, err = s.Consume(ctx, auth.TokenPasswordReset, "tok")
	if err != nil || uid != "u1" {
		t.Fatalf("consume: uid=%q err=%v", uid, err)
	}

	_, err = s.Consume(ctx, auth.TokenPasswordReset, "tok")
	requireCode(t, err, "reset_token_not_found")
}

func TestOneTimeTokenStore_KindScopedAndExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewOneTimeTokenStore()

	_ = s.Save(ctx, auth.TokenVerifyEmail, "tok", "u1", time.Hour)

	// same token string under the other kind is a miss
	_, err := s.Consume(ctx, auth.TokenPasswordReset, "tok")
	requireCode(t, err, "reset_token_not_found")

	_ = s.Save(ctx, auth.TokenVerifyEmail, "old", "u1", -time.Second)
	_, err = s.Consume(ctx, auth.TokenVerifyEmail, "old")
	requireCode(t, err, "verify_token_not_found")
}

func TestUserRepo_CreateUniqueness(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewUserRepo()

	_, err := r.Create(ctx, domain.User{ID: "u1", Email: "a@example.com", Username: "alice", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = r.Create(ctx, domain.User{ID: "u2", Email: "a@example.com", Username: "bob"})
	requireCode(t, err, "email_already_exists")

	_, err = r.Create(ctx, domain.User{ID: "u3", Email: "b@example.com", Username: "alice"})
	requireCode(t, err, "username_already_exists")
}

func TestUserRepo_Identifier(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewUserRepo()

	_, _ = r.Create(ctx, domain.User{ID: "u1", Email: "a@example.com", Username: "alice"})

	u, err := r.GetByIdentifier(ctx, "a@example.com")
	if err != nil || u.ID != "u1" {
		t.Fatalf("by email: %v", err)
	}
	u, err = r.GetByIdentifier(ctx, "alice")
	if err != nil || u.ID != "u1" {
		t.Fatalf("by username: %v", err)
	}
	_, err = r.GetByIdentifier(ctx, "nobody")
	requireCode(t, err, "user_not_found")
}

func TestUserRepo_UpdateReindexes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewUserRepo()

	u, _ := r.Create(ctx, domain.User{ID: "u1", Email: "a@example.com", Username: "alice"})
	_, _ = r.Create(ctx, domain.User{ID: "u2", Email: "b@example.com", Username: "bob"})

	u.Email = "c@example.com"
	if _, err := r.Update(ctx, u); err != nil {
		t.Fatalf("update: %v", err)
	}

	// old email is free again
	_, err := r.GetByEmail(ctx, "a@example.com")
	requireCode(t, err, "user_not_found")

	got, err := r.GetByEmail(ctx, "c@example.com")
	if err != nil || got.ID != "u1" {
		t.Fatalf("new email lookup: %v", err)
	}

	// conflicting with another user's email is rejected
	u.Email = "b@example.com"
	_, err = r.Update(ctx, u)
	requireCode(t, err, "email_already_exists")
}

func TestUserRepo_ListPaginates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewUserRepo()

	base := time.Now().UTC()
	for i, id := range []string{"u1", "u2", "u3"} {
		_, _ = r.Create(ctx, domain.User{
			ID:        id,
			Email:     id + "@example.com",
			Username:  id,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	page, total, err := r.List(ctx, 0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(page) != 2 {
		t.Fatalf("total=%d len=%d", total, len(page))
	}
	if page[0].ID != "u1" || page[1].ID != "u2" {
		t.Fatalf("expected oldest first, got %s, %s", page[0].ID, page[1].ID)
	}

	page, _, _ = r.List(ctx, 2, 2)
	if len(page) != 1 || page[0].ID != "u3" {
		t.Fatalf("last page wrong: %+v", page)
	}

	page, total, _ = r.List(ctx, 10, 2)
	if total != 3 || len(page) != 0 {
		t.Fatalf("past-the-end page should be empty, got %+v", page)
	}
}

func TestUserRepo_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewUserRepo()

	_, _ = r.Create(ctx, domain.User{ID: "u1", Email: "a@example.com", Username: "alice"})
	if err := r.Delete(ctx, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	requireCode(t, r.Delete(ctx, "u1"), "user_not_found")

	// indexes cleaned up: email and username can be reused
	if _, err := r.Create(ctx, domain.User{ID: "u2", Email: "a@example.com", Username: "alice"}); err != nil {
		t.Fatalf("recreate after delete: %v", err)
	}
}

func TestFileRepo_ListNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewFileRepo()

	base := time.Now().UTC()
	for i, id := range []string{"f1", "f2", "f3"} {
		_, _ = r.Create(ctx, domain.StoredFile{
			ID:        id,
			OwnerID:   "u1",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	_, _ = r.Create(ctx, domain.StoredFile{ID: "other", OwnerID: "u2", CreatedAt: base})

	page, total, err := r.ListByOwner(ctx, "u1", 0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(page) != 2 {
		t.Fatalf("total=%d len=%d", total, len(page))
	}
	if page[0].ID != "f3" || page[1].ID != "f2" {
		t.Fatalf("expected newest first, got %s, %s", page[0].ID, page[1].ID)
	}
}

func TestFileRepo_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewFileRepo()

	_, _ = r.Create(ctx, domain.StoredFile{ID: "f1", OwnerID: "u1"})
	if err := r.Delete(ctx, "f1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	requireCode(t, r.Delete(ctx, "f1"), "file_not_found")
	_, err := r.GetByID(ctx, "f1")
	requireCode(t, err, "file_not_found")
}
