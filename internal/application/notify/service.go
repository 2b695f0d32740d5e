package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Sender delivers rendered emails. SMTP in prod, a fake in dev.
type Sender interface {
	SendVerifyEmail(ctx context.Context, toEmail, url string) error
	SendPasswordReset(ctx context.Context, toEmail, url string) error
	SendWelcome(ctx context.Context, toEmail, username string) error
}

type IdempotencyStore interface {
	// Seen returns true if key already marked as sent.
	Seen(ctx context.Context, key string) (bool, error)

	// MarkSent marks key as sent with TTL (idempotent).
	// If it already exists, treat as success.
	MarkSent(ctx context.Context, key string, ttl time.Duration) error
}

type Service struct {
	sender Sender
	idem   IdempotencyStore // nil => disabled
	ttl    time.Duration
	lg     zerolog.Logger
}

func NewService(sender Sender, idem IdempotencyStore, ttl time.Duration, lg zerolog.Logger) *Service {
	return &Service{
		sender: sender,
		idem:   idem,
		ttl:    ttl,
		lg:     lg.With().Str("component", "notify_service").Logger(),
	}
}

func (s *Service) VerifyEmail(ctx context.Context, userID, email, link string) error {
	token := tokenFromLink(link)
	key := fmt.Sprintf("email:verify:%s", tokenOrFallback(token, link))

	if s.alreadySent(ctx, key, email) {
		return nil
	}

	if err := s.sender.SendVerifyEmail(ctx, email, link); err != nil {
		return err
	}

	s.markSent(ctx, key)
	s.lg.Info().Str("email", email).Msg("verify email sent")
	return nil
}

func (s *Service) PasswordReset(ctx context.Context, userID, email, link string) error {
	token := tokenFromLink(link)
	key := fmt.Sprintf("email:reset:%s", tokenOrFallback(token, link))

	if s.alreadySent(ctx, key, email) {
		return nil
	}

	if err := s.sender.SendPasswordReset(ctx, email, link); err != nil {
		return err
	}

	s.markSent(ctx, key)
	s.lg.Info().Str("email", email).Msg("password reset email sent")
	return nil
}

// Welcome greets a freshly registered user. Keyed on the user id since
// there is no token to dedupe on.
func (s *Service) Welcome(ctx context.Context, userID, email, username string) error {
	key := fmt.Sprintf("email:welcome:%s", tokenOrFallback(userID, email))

	if s.alreadySent(ctx, key, email) {
		return nil
	}

	if err := s.sender.SendWelcome(ctx, email, username); err != nil {
		return err
	}

	s.markSent(ctx, key)
	s.lg.Info().Str("email", email).Msg("welcome email sent")
	return nil
}

// alreadySent consults the idempotency store. A store error degrades to
// "not seen" so a Redis blip never blocks delivery.
func (s *Service) alreadySent(ctx context.Context, key, email string) bool {
	if s.idem == nil {
		return false
	}
	seen, err := s.idem.Seen(ctx, key)
	if err != nil {
		s.lg.Warn().Err(err).Str("key", key).Msg("idempotency check failed, sending anyway")
		return false
	}
	if seen {
		s.lg.Info().Str("email", email).Str("key", key).Msg("idempotent skip (already sent)")
	}
	return seen
}

func (s *Service) markSent(ctx context.Context, key string) {
	if s.idem == nil {
		return
	}
	if err := s.idem.MarkSent(ctx, key, s.ttl); err != nil {
		s.lg.Warn().Err(err).Str("key", key).Msg("idempotency mark failed (send already succeeded)")
	}
}

func tokenFromLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(u.Query().Get("token"))
}

func tokenOrFallback(token, link string) string {
	if token != "" {
		return token
	}
	return link
}
