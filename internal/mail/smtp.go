package mail

import (
	"context"
	"fmt"
	"sync"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig holds connection settings for an SMTP server.
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	RequireTLS bool
	Timeout    time.Duration
}

// SMTPGateway sends mail through an SMTP server using STARTTLS.
type SMTPGateway struct {
	mu     sync.Mutex
	client *gomail.Client
	sender Sender
}

// NewSMTPGateway creates an SMTP gateway. No connection is made until Send.
func NewSMTPGateway(cfg SMTPConfig, sender Sender) (*SMTPGateway, error) {
	policy := gomail.TLSOpportunistic
	if cfg.RequireTLS {
		policy = gomail.TLSMandatory
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(policy),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPGateway{client: client, sender: sender}, nil
}

// Send delivers one message, dialing a fresh connection.
func (g *SMTPGateway) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(g.sender.Name, g.sender.Email); err != nil {
		return deliveryError("invalid sender: %v", err)
	}
	if err := msg.To(to); err != nil {
		return deliveryError("invalid recipient: %v", err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.client.DialAndSendWithContext(ctx, msg); err != nil {
		return deliveryError("smtp: %v", err)
	}
	return nil
}
