package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier stands in for a mail provider: the reset link is written to
// the log instead of an inbox.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, in PasswordResetInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.password_reset",
		"email", in.Email,
		"name", in.Name,
		"reset_url", in.ResetURL,
		"expires_at", in.ExpiresAt,
	)
	return nil
}
