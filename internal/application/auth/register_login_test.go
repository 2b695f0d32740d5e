package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/baechuer/go-api-starter/internal/domain"
)

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _, _, _, _ := newSvcForTest(t)

	_, err := svc.Register(context.Background(), "", "alice", "pw123456", "")
	requireDomainCode(t, err, "missing_field")

	_, err = svc.Register(context.Background(), "a@b.com", "", "pw123456", "")
	requireDomainCode(t, err, "missing_field")

	_, err = svc.Register(context.Background(), "a@b.com", "alice", "", "")
	requireDomainCode(t, err, "missing_field")
}

func TestRegister_HashFail_ReturnsHashFailed(t *testing.T) {
	t.Parallel()

	svc, _, hasher, _, _, _, _, _ := newSvcForTest(t)
	hasher.hashFn = func(pw string) (string, error) { return "", errors.New("boom") }

	_, err := svc.Register(context.Background(), "a@b.com", "alice", "pw123456", "")
	requireDomainCode(t, err, "hash_failed")
}

func TestRegister_Success_IssuesTokens_AndPersistsUser(t *testing.T) {
	t.Parallel()

	svc, users, _, _, sessions, _, pub, _ := newSvcForTest(t)

	res, err := svc.Register(context.Background(), "A@B.com", "alice", "pw123456", "Alice A")
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if res.User.ID == "" {
		t.Fatalf("expected user ID set")
	}
	if res.User.Email != "a@b.com" {
		t.Fatalf("expected lowercased email, got %q", res.User.Email)
	}
	if res.User.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %q", res.User.Role)
	}
	if !res.User.Active {
		t.Fatalf("expected new account active")
	}
	if res.User.EmailVerified {
		t.Fatalf("expected new account unverified")
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", res.Tokens)
	}
	if _, ok := users.byID[res.User.ID]; !ok {
		t.Fatalf("expected user stored by id")
	}
	if _, ok := sessions.byToken[res.Tokens.RefreshToken]; !ok {
		t.Fatalf("expected refresh stored")
	}
	if len(pub.registeredEvts) != 1 || pub.registeredEvts[0].Email != "a@b.com" {
		t.Fatalf("expected registered event, got %+v", pub.registeredEvts)
	}
}

func TestRegister_DuplicateEmail_Conflict(t *testing.T) {
	t.Parallel()

	svc, users, _, _, _, _, _, _ := newSvcForTest(t)
	users.add(domain.User{ID: "u1", Email: "a@b.com", Username: "taken"})

	_, err := svc.Register(context.Background(), "a@b.com", "alice", "pw123456", "")
	requireDomainCode(t, err, "email_already_exists")
}

func TestRegister_DuplicateUsername_Conflict(t *testing.T) {
	t.Parallel()

	svc, users, _, _, _, _, _, _ := newSvcForTest(t)
	users.add(domain.User{ID: "u1", Email: "other@b.com", Username: "alice"})

	_, err := svc.Register(context.Background(), "a@b.com", "alice", "pw123456", "")
	requireDomainCode(t, err, "username_already_exists")
}

func TestRegister_BrokerDown_StillSucceeds(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _, _, pub, audits := newSvcForTest(t)
	pub.registeredErr = domain.ErrBrokerUnavailable(errors.New("amqp down"))

	res, err := svc.Register(context.Background(), "a@b.com", "alice", "pw123456", "")
	if err != nil {
		t.Fatalf("registration must not fail on publish error, got %v", err)
	}
	if res.Tokens.AccessToken == "" {
		t.Fatalf("expected tokens")
	}
	if len(*audits) == 0 || (*audits)[0].action != "auth.register.publish_failed" {
		t.Fatalf("expected publish failure audited, got %+v", *audits)
	}
}

func TestLogin_EmptyFields_InvalidCredentials(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _, _, _, _ := newSvcForTest(t)

	_, err := svc.Login(context.Background(), "", "")
	requireDomainCode(t, err, "invalid_credentials")
}

func TestLogin_UnknownIdentifier_NonEnumerating(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _, _, _, _ := newSvcForTest(t)

	_, err := svc.Login(context.Background(), "missing@x.com", "pw")
	requireDomainCode(t, err, "invalid_credentials")
}

func TestLogin_BadPassword_InvalidCredentials(t *testing.T) {
	t.Parallel()

	svc, users, hasher, _, _, _, _, _ := newSvcForTest(t)
	users.add(domain.User{ID: "u1", Email: "e@x.com", Username: "eve", PasswordHash: "hash:pw", Role: domain.RoleUser, Active: true})

	hasher.compareFn = func(hash, pw string) error { return errors.New("nope") }

	_, err := svc.Login(context.Background(), "e@x.com", "pw")
	requireDomainCode(t, err, "invalid_credentials")
}

func TestLogin_DisabledAccount_HiddenBehindInvalidCredentials(t *testing.T) {
	t.Parallel()

	svc, users, _, _, _, _, _, _ := newSvcForTest(t)
	users.add(domain.User{ID: "u1", Email: "e@x.com", Username: "eve", PasswordHash: "hash:pw", Role: domain.RoleUser, Active: false})

	_, err := svc.Login(context.Background(), "e@x.com", "pw")
	requireDomainCode(t, err, "invalid_credentials")
}

func TestLogin_ByEmail_Success(t *testing.T) {
	t.Parallel()

	svc, users, _, _, _, _, _, _ := newSvcForTest(t)
	users.add(domain.User{ID: "u1", Email: "e@x.com", Username: "eve", PasswordHash: "hash:pw", Role: domain.RoleUser, Active: true})

	res, err := svc.Login(context.Background(), "  e@x.com  ", "pw")
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if res.User.ID != "u1" {
		t.Fatalf("expected user u1, got %+v", res.User)
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", res.Tokens)
	}
}

func TestLogin_ByUsername_Success(t *testing.T) {
	t.Parallel()

	svc, users, _, _, _, _, _, _ := newSvcForTest(t)
	users.add(domain.User{ID: "u1", Email: "e@x.com", Username: "eve", PasswordHash: "hash:pw", Role: domain.RoleUser, Active: true})

	res, err := svc.Login(context.Background(), "eve", "pw")
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if res.User.Username != "eve" {
		t.Fatalf("expected user eve, got %+v", res.User)
	}
}
