// Package email implements the assignee email channel on Mailgun.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/yourorg/taskboard/internal/reliability/circuitbreaker"
)

// MailgunSender sends notification emails through the Mailgun API. A
// circuit breaker fast-fails sends while the API is down; a skipped send
// is still within the one-best-effort-attempt budget.
type MailgunSender struct {
	mg      mailgun.Mailgun
	from    string
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewMailgunSender creates a Mailgun-backed sender
func NewMailgunSender(domain, apiKey, from string, logger *slog.Logger) *MailgunSender {
	if logger == nil {
		logger = slog.Default()
	}

	breaker := circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second)
	breaker.SetStateChangeCallback(func(fromState, toState circuitbreaker.State) {
		logger.Warn("email circuit breaker state change",
			slog.Int("from", int(fromState)),
			slog.Int("to", int(toState)),
		)
	})

	return &MailgunSender{
		mg:      mailgun.NewMailgun(domain, apiKey),
		from:    from,
		breaker: breaker,
		logger:  logger,
	}
}

// Send delivers one email. Exactly one attempt; no retry.
func (s *MailgunSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if !s.breaker.AllowRequest() {
		return fmt.Errorf("email circuit open, skipping send to %s", to)
	}

	msg := s.mg.NewMessage(s.from, subject, "", to)
	msg.SetHtml(htmlBody)

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, _, err := s.mg.Send(sendCtx, msg)
	if err != nil {
		s.breaker.RecordFailure()
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	s.breaker.RecordSuccess()
	s.logger.Info("email sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}
