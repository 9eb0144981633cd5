// Package mail delivers reminder emails through SMTP, a signed HTTP relay,
// or the application log.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/todolist/todolist/internal/config"
)

// ErrDelivery wraps every failure to hand a message to the transport.
var ErrDelivery = errors.New("mail delivery failed")

// Gateway sends a single HTML email.
type Gateway interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Sender identifies the From address of outgoing mail.
type Sender struct {
	Name  string
	Email string
}

// New builds the gateway selected by cfg.MailDriver.
func New(cfg *config.Config, logger *slog.Logger) (Gateway, error) {
	sender := Sender{Name: cfg.MailSenderName, Email: cfg.MailSenderEmail}

	switch cfg.MailDriver {
	case config.MailDriverSMTP:
		gw, err := NewSMTPGateway(SMTPConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			Username:   cfg.SMTPUsername,
			Password:   cfg.SMTPPassword,
			RequireTLS: cfg.SMTPRequireTLS,
			Timeout:    cfg.MailTimeout,
		}, sender)
		if err != nil {
			return nil, err
		}
		return gw, nil
	case config.MailDriverRelay:
		return NewRelayGateway(cfg.MailRelayURL, cfg.MailRelaySecret, sender, NewHTTPClient(cfg.MailTimeout)), nil
	case config.MailDriverLog:
		return NewLogGateway(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.MailDriver)
	}
}

func deliveryError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDelivery, fmt.Sprintf(format, args...))
}
