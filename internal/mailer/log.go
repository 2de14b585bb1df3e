package mailer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jobscout/jobscout/internal/model"
)

// Ensure LogMailer implements model.Mailer.
var _ model.Mailer = (*LogMailer)(nil)

// LogMailer logs outbound emails instead of sending them. Used when no email
// provider is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer returns a mailer that only logs.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the email and returns a generated id.
func (m *LogMailer) Send(_ context.Context, msg model.Email) (string, error) {
	id := "log-" + uuid.NewString()
	m.logger.Info("email (log only)",
		"to", msg.To,
		"subject", msg.Subject,
		"html_bytes", len(msg.HTML),
		"email_id", id,
	)
	return id, nil
}
