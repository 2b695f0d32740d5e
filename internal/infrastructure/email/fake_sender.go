package email

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// FakeSender logs instead of dialing SMTP. Used in dev mode and tests.
type FakeSender struct {
	lg zerolog.Logger

	mu   sync.Mutex
	Sent []FakeMessage
}

type FakeMessage struct {
	Kind string
	To   string
	// URL for verify/reset, username for welcome.
	Payload string
}

func NewFakeSender(lg zerolog.Logger) *FakeSender {
	return &FakeSender{lg: lg.With().Str("component", "fake_sender").Logger()}
}

func (f *FakeSender) SendVerifyEmail(_ context.Context, toEmail, url string) error {
	f.record("verify", toEmail, url)
	return nil
}

func (f *FakeSender) SendPasswordReset(_ context.Context, toEmail, url string) error {
	f.record("password_reset", toEmail, url)
	return nil
}

func (f *FakeSender) SendWelcome(_ context.Context, toEmail, username string) error {
	f.record("welcome", toEmail, username)
	return nil
}

func (f *FakeSender) record(kind, to, payload string) {
	f.mu.Lock()
	f.Sent = append(f.Sent, FakeMessage{Kind: kind, To: to, Payload: payload})
	f.mu.Unlock()

	f.lg.Info().
		Str("kind", kind).
		Str("to", to).
		Str("payload", payload).
		Msg("fake email sent")
}

// Messages returns a copy of everything recorded so far.
func (f *FakeSender) Messages() []FakeMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeMessage, len(f.Sent))
	copy(out, f.Sent)
	return out
}
