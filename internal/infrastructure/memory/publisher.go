package memory

import (
	"context"
	"log"

	"github.com/baechuer/go-api-starter/internal/application/auth"
)

/*
NoopPublisher
-------------
Stand-in for RabbitMQ outside production: logs the event instead of
publishing, so signup/reset flows keep working without a broker.
*/
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) PublishUserRegistered(ctx context.Context, evt auth.UserRegisteredEvent) error {
	log.Printf("[noop-pub] user registered: user_id=%s email=%s username=%s", evt.UserID, evt.Email, evt.Username)
	return nil
}

func (p *NoopPublisher) PublishVerifyEmail(ctx context.Context, evt auth.VerifyEmailEvent) error {
	log.Printf("[noop-pub] verify email: user_id=%s email=%s url=%s", evt.UserID, evt.Email, evt.URL)
	return nil
}

func (p *NoopPublisher) PublishPasswordReset(ctx context.Context, evt auth.PasswordResetEvent) error {
	log.Printf("[noop-pub] password reset: user_id=%s email=%s url=%s", evt.UserID, evt.Email, evt.URL)
	return nil
}
