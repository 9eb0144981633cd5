package mail

import (
	"context"
	"log/slog"
)

// LogGateway only logs outgoing mail. Meant for development.
type LogGateway struct {
	logger *slog.Logger
}

// NewLogGateway creates a gateway that writes recipient and subject to logger.
func NewLogGateway(logger *slog.Logger) *LogGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogGateway{logger: logger}
}

// Send logs the message envelope. The body is never logged.
func (g *LogGateway) Send(ctx context.Context, to, subject, htmlBody string) error {
	g.logger.InfoContext(ctx, "mail not sent (log driver)",
		"to", to,
		"subject", subject,
		"body_bytes", len(htmlBody),
	)
	return nil
}
